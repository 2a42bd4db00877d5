package mock_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/mock"
	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/stream"
)

var _ = Describe("Script", func() {
	script := mock.Script{
		Answer:            "Paris is the capital of France",
		Sources:           []blocks.WebResult{{Name: "Wiki", URL: "https://wiki"}},
		RelatedQueryItems: []blocks.RelatedQueryItem{{Text: "a"}, {Text: "b"}},
		Steps:             3,
	}

	It("renders complete frames", func() {
		frames, err := script.Frames("q")
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(3 + 1 + 1 + 1 + 1))
		for _, f := range frames {
			Expect(f).To(HavePrefix("data: "))
			Expect(f).To(HaveSuffix("\n\n"))
		}
		Expect(frames[len(frames)-1]).To(Equal("data: [DONE]\n\n"))
	})

	It("assembles into the scripted answer", func() {
		frames, err := script.Frames("q")
		Expect(err).NotTo(HaveOccurred())

		var events []stream.Event
		for ev := range stream.Events(context.Background(), strings.NewReader(strings.Join(frames, ""))) {
			events = append(events, ev)
		}

		Expect(events).To(HaveLen(4))
		Expect(events[0].Answer).To(Equal("Paris is"))
		Expect(events[1].Answer).To(Equal("Paris is the capital"))
		Expect(events[2].Answer).To(Equal("Paris is the capital of France"))

		resp := events[3].Response
		Expect(resp).NotTo(BeNil())
		Expect(resp.Answer).To(Equal("Paris is the capital of France"))
		Expect(resp.Sources).To(Equal([]blocks.NormalizedSource{{Title: "Wiki", URL: "https://wiki", Name: "Wiki"}}))
		Expect(resp.RelatedQueries).To(Equal([]string{"a", "b"}))
	})

	It("substitutes the question", func() {
		s := mock.Script{Answer: "You asked %s", Steps: 1}
		frames, err := s.Frames("why")
		Expect(err).NotTo(HaveOccurred())
		Expect(frames[0]).To(ContainSubstring("You asked why"))
	})

	It("caps steps at the number of words", func() {
		s := mock.Script{Answer: "one two", Steps: 10}
		frames, err := s.Frames("q")
		Expect(err).NotTo(HaveOccurred())
		// two patches, the final block, the final message and [DONE]
		Expect(frames).To(HaveLen(5))
	})
})
