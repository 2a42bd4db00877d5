package stream_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/pkg/stream"
)

var _ = Describe("Events", func() {
	It("yields chunks followed by the completion", func() {
		body := answerFrame("Par") + answerFrame("Paris") + sourcesFrame + finalFrame

		var kinds []stream.EventKind
		var last stream.Event
		for ev := range stream.Events(context.Background(), strings.NewReader(body), stream.WithGeneration(3)) {
			kinds = append(kinds, ev.Kind)
			last = ev
		}

		Expect(kinds).To(Equal([]stream.EventKind{stream.EventChunk, stream.EventChunk, stream.EventComplete}))
		Expect(last.Response.Answer).To(Equal("Paris"))
		Expect(last.Response.Sources).To(HaveLen(1))
		Expect(last.Response.Generation).To(Equal(uint64(3)))
	})

	It("ends with an error event on failure", func() {
		var events []stream.Event
		for ev := range stream.Events(context.Background(), failAfter(parisFrame, errConnReset)) {
			events = append(events, ev)
		}

		Expect(events).To(HaveLen(2))
		Expect(events[0].Answer).To(Equal("Paris"))
		Expect(events[1].Kind).To(Equal(stream.EventError))
		Expect(events[1].Err).To(MatchError(errConnReset))
	})

	It("cancels the stream when the loop breaks", func() {
		body := newBlockingBody(parisFrame + answerFrame("Paris is"))

		var chunks []string
		for ev := range stream.Events(context.Background(), body) {
			chunks = append(chunks, ev.Answer)
			break
		}

		Expect(chunks).To(Equal([]string{"Paris"}))
		Eventually(body.isClosed).Should(BeTrue())
	})
})
