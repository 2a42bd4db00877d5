package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/archive/inmemory"
	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/logger"
)

var _ = Describe("Server", func() {
	var (
		server *Server
		inMem  *inmemory.Driver
		ctx    context.Context
	)

	put := func(id, question string, createdAt time.Time) {
		_, err := inMem.Put(ctx, &archive.Record{
			ID:        id,
			Question:  question,
			Answer:    "Answer to " + question,
			Sources:   []blocks.NormalizedSource{{Title: "Wikipedia", URL: "https://en.wikipedia.org"}},
			CreatedAt: createdAt,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	get := func(path string) (*http.Response, []byte) {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	BeforeEach(func() {
		ctx = context.Background()
		inMem = inmemory.NewDriver()
		server = NewServer(Config{ListenAddr: ":0"}, inMem, logger.Nop())
	})

	It("answers pings", func() {
		resp, body := get("/ping")
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(string(body)).To(Equal(`"pong"`))
	})

	It("defaults the listen address", func() {
		s := NewServer(Config{}, inMem, nil)
		Expect(s.config.ListenAddr).To(Equal(DefaultListenAddr))
	})

	Describe("GET /v1/answers", func() {
		It("returns an empty list for an empty archive", func() {
			resp, body := get("/v1/answers")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(MatchJSON(`{"count":0,"answers":[]}`))
		})

		It("returns answers newest first, bounded by limit", func() {
			base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			put("a", "first", base)
			put("b", "second", base.Add(time.Minute))
			put("c", "third", base.Add(2*time.Minute))

			resp, body := get("/v1/answers?limit=2")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(2))
			Expect(list.Answers[0].ID).To(Equal("c"))
			Expect(list.Answers[1].ID).To(Equal("b"))
		})

		It("returns every answer for limit=0", func() {
			put("a", "first", time.Now())
			put("b", "second", time.Now())

			_, body := get("/v1/answers?limit=0")
			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(2))
		})

		DescribeTable("rejects an invalid limit",
			func(limit string) {
				resp, body := get("/v1/answers?limit=" + limit)
				Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
				Expect(string(body)).To(ContainSubstring("limit must be a non-negative integer"))
			},
			Entry("non-integer", "abc"),
			Entry("negative", "-1"),
		)
	})

	Describe("GET /v1/answers/:id", func() {
		It("returns the archived answer", func() {
			put("req-1", "What is the capital of France?", time.Now())

			resp, body := get("/v1/answers/req-1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var rec archive.Record
			Expect(json.Unmarshal(body, &rec)).To(Succeed())
			Expect(rec.Question).To(Equal("What is the capital of France?"))
			Expect(rec.Sources).To(HaveLen(1))
		})

		It("returns 404 for an unknown id", func() {
			resp, body := get("/v1/answers/missing")
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(string(body)).To(ContainSubstring("answer not found"))
		})
	})
})
