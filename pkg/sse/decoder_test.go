package sse

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/text/encoding"
)

var _ = Describe("Decoder", func() {
	var d *Decoder

	BeforeEach(func() {
		d = NewDecoder()
	})

	It("decodes plain ASCII chunks as-is", func() {
		text, err := d.Decode([]byte("data: hi\n\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("data: hi\n\n"))
	})

	It("holds back a multi-byte sequence split across chunks", func() {
		euro := []byte("€") // e2 82 ac

		text, err := d.Decode(append([]byte("price: "), euro[:1]...))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("price: "))

		text, err = d.Decode(euro[1:2])
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())

		text, err = d.Decode(append(euro[2:], '!'))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("€!"))

		text, err = d.Flush()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("strips a leading byte order mark, even when split", func() {
		text, err := d.Decode([]byte{0xEF, 0xBB})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())

		text, err = d.Decode([]byte{0xBF, 'o', 'k'})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("ok"))
	})

	It("reports invalid bytes with their stream offset", func() {
		_, err := d.Decode([]byte("abc"))
		Expect(err).NotTo(HaveOccurred())

		_, err = d.Decode([]byte{'d', 0xC3, 0x28})
		var decodeErr *DecodeError
		Expect(errors.As(err, &decodeErr)).To(BeTrue())
		Expect(decodeErr.Offset).To(Equal(int64(4)))
		Expect(errors.Is(err, encoding.ErrInvalidUTF8)).To(BeTrue())
	})

	It("reports a sequence left incomplete at end of stream", func() {
		_, err := d.Decode([]byte{'x', 0xE2, 0x82})
		Expect(err).NotTo(HaveOccurred())

		_, err = d.Flush()
		var decodeErr *DecodeError
		Expect(errors.As(err, &decodeErr)).To(BeTrue())
	})
})
