package archive_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/stream"
)

var _ = Describe("NewRecord", func() {
	It("copies the response", func() {
		resp := &stream.Response{
			Answer:         "Paris",
			Sources:        []blocks.NormalizedSource{{Title: "Wiki", URL: "https://wiki", Name: "Wiki"}},
			RelatedQueries: []string{"a"},
			Generation:     4,
			RequestID:      "req-1",
		}

		rec := archive.NewRecord("capital of France?", "http://localhost/ask", resp)
		Expect(rec.ID).To(Equal("req-1"))
		Expect(rec.Generation).To(Equal(uint64(4)))
		Expect(rec.Question).To(Equal("capital of France?"))
		Expect(rec.Answer).To(Equal("Paris"))
		Expect(rec.Sources).To(Equal(resp.Sources))
		Expect(rec.RelatedQueries).To(Equal([]string{"a"}))
		Expect(rec.Endpoint).To(Equal("http://localhost/ask"))
		Expect(rec.CreatedAt).To(BeTemporally("~", time.Now(), time.Minute))

		resp.Sources[0].Title = "changed"
		Expect(rec.Sources[0].Title).To(Equal("Wiki"))
	})
})

var _ = Describe("NotFoundError", func() {
	It("names the missing record", func() {
		Expect(archive.NotFoundError{ID: "x"}.Error()).To(Equal("record not found: x"))
		Expect(archive.NotFoundError{}.Error()).To(Equal("record not found"))
	})
})
