package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseFrame", func() {
	It("reads event type, id and data", func() {
		ev := ParseFrame("event: message\nid: 7\ndata: {\"a\":1}")
		Expect(ev).To(Equal(Event{Type: "message", ID: "7", Data: `{"a":1}`}))
	})

	It("leaves the type unset without an event line", func() {
		ev := ParseFrame("data: x")
		Expect(ev.Type).To(BeEmpty())
	})

	It("handles data without a space after the colon", func() {
		Expect(ParseFrame("data:no-space").Data).To(Equal("no-space"))
	})

	It("ignores unknown fields and lines without a colon", func() {
		ev := ParseFrame("retry: 3000\nfoo: bar\ndata\ndata: hello")
		Expect(ev.Data).To(Equal("hello"))
	})

	It("trims whitespace around the payload", func() {
		Expect(ParseFrame("data:   [DONE]  ").Data).To(Equal("[DONE]"))
	})
})

var _ = DescribeTable("IsSentinel",
	func(data string, want bool) {
		Expect(IsSentinel(data)).To(Equal(want))
	},
	Entry("empty payload", "", true),
	Entry("termination sentinel", "[DONE]", true),
	Entry("empty object", "{}", true),
	Entry("json payload", `{"blocks":[]}`, false),
	Entry("spaced empty object", "{ }", false),
)

var _ = DescribeTable("IsEndOfStream",
	func(eventType string, want bool) {
		Expect(IsEndOfStream(eventType)).To(Equal(want))
	},
	Entry("end", "end", true),
	Entry("end_of_stream", "end_of_stream", true),
	Entry("done, upper case", "DONE", true),
	Entry("message", "message", false),
	Entry("unset", "", false),
)
