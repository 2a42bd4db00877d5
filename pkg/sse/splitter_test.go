package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Splitter", func() {
	var s *Splitter

	BeforeEach(func() {
		s = &Splitter{}
	})

	It("emits complete frames and carries the remainder", func() {
		frames := s.Push("data: a\n\ndata: b\n\ndata: c")
		Expect(frames).To(Equal([]string{"data: a", "data: b"}))
		Expect(s.Carry()).To(Equal("data: c"))
	})

	It("completes a carried frame on a later push", func() {
		Expect(s.Push("data: par")).To(BeEmpty())
		Expect(s.Push("tial\n")).To(BeEmpty())
		Expect(s.Push("\ndata: next")).To(Equal([]string{"data: partial"}))
		Expect(s.Carry()).To(Equal("data: next"))
	})

	It("drops whitespace-only frames", func() {
		Expect(s.Push("\n\n\n\ndata: x\n\n")).To(Equal([]string{"data: x"}))
	})

	It("joins a CRLF pair split across pushes", func() {
		Expect(s.Push("data: x\r\n\r")).To(BeEmpty())
		Expect(s.Carry()).To(Equal("data: x\n\r"))
		Expect(s.Push("\ndata: y")).To(Equal([]string{"data: x"}))
	})

	It("resets on Flush", func() {
		s.Push("data: left")
		Expect(s.Flush()).To(Equal("data: left"))
		Expect(s.Carry()).To(BeEmpty())
	})
})
