package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/pkg/logger"
)

// decodeLines parses newline-delimited JSON log records.
func decodeLines(buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
		records = append(records, rec)
	}
	return records
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

var _ = Describe("ParseFormat", func() {
	DescribeTable("accepts known formats",
		func(in string, want logger.Format) {
			f, err := logger.ParseFormat(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(want))
		},
		Entry("text", "text", logger.FormatText),
		Entry("json", "json", logger.FormatJSON),
		Entry("pretty, mixed case and padded", " Pretty ", logger.FormatPretty),
	)

	It("rejects unknown formats", func() {
		_, err := logger.ParseFormat("xml")
		Expect(err).To(MatchError(ContainSubstring(`unknown log format "xml"`)))
	})
})

var _ = Describe("New", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	It("writes text records by default", func() {
		l := logger.New(logger.WithWriter(buf))
		l.Info("stream started", "request_id", "req-1")

		Expect(buf.String()).To(ContainSubstring("msg=\"stream started\""))
		Expect(buf.String()).To(ContainSubstring("request_id=req-1"))
	})

	It("filters debug records at the default level", func() {
		l := logger.New(logger.WithWriter(buf))
		l.Debug("hidden")
		Expect(buf.String()).To(BeEmpty())
	})

	It("lowers the level with WithDebug", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithDebug(true))
		l.Debug("skipping frame")
		Expect(buf.String()).To(ContainSubstring("skipping frame"))
	})

	It("keeps an explicit level when debug is off", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithLevel(slog.LevelWarn), logger.WithDebug(false))
		l.Info("dropped")
		l.Warn("stream failed")

		Expect(buf.String()).NotTo(ContainSubstring("dropped"))
		Expect(buf.String()).To(ContainSubstring("stream failed"))
	})

	It("writes JSON records", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatJSON))
		l.Info("answer archived", "sources", 2)

		records := decodeLines(buf)
		Expect(records).To(HaveLen(1))
		Expect(records[0]).To(HaveKeyWithValue("msg", "answer archived"))
		Expect(records[0]).To(HaveKeyWithValue("sources", BeNumerically("==", 2)))
	})

	It("writes pretty records", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatPretty))
		l.Info("starting mock server")
		Expect(buf.String()).To(ContainSubstring("starting mock server"))
	})

	It("binds attrs to every record", func() {
		l := logger.New(
			logger.WithWriter(buf),
			logger.WithFormat(logger.FormatJSON),
			logger.WithAttrs("component", "client"),
		)
		l.Info("asking")
		l.Info("asked")

		for _, rec := range decodeLines(buf) {
			Expect(rec).To(HaveKeyWithValue("component", "client"))
		}
	})

	It("writes to every writer", func() {
		var other bytes.Buffer
		l := logger.New(logger.WithWriters(buf, &other))
		l.Info("multi")

		Expect(buf.String()).To(ContainSubstring("multi"))
		Expect(other.String()).To(ContainSubstring("multi"))
	})

	It("nests group keys", func() {
		l := logger.New(logger.WithWriter(buf), logger.WithFormat(logger.FormatJSON))
		l.WithGroup("request").Info("processed", "method", "POST")

		records := decodeLines(buf)
		Expect(records[0]).To(HaveKeyWithValue("request", HaveKeyWithValue("method", "POST")))
	})
})

var _ = Describe("Nop", func() {
	It("discards everything", func() {
		l := logger.Nop()
		Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		Expect(func() {
			l.With("key", "value").WithGroup("group").Error("msg")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("dispatches to all loggers, each at its own level", func() {
		var console, file bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&console)),
			logger.New(logger.WithWriter(&file), logger.WithFormat(logger.FormatJSON), logger.WithDebug(true)),
		)

		multi.Debug("frame skipped")
		multi.Info("stream complete")

		Expect(console.String()).NotTo(ContainSubstring("frame skipped"))
		Expect(console.String()).To(ContainSubstring("stream complete"))
		Expect(decodeLines(&file)).To(HaveLen(2))
	})

	It("carries With and WithGroup to every handler", func() {
		var a, b bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithFormat(logger.FormatJSON)),
			logger.New(logger.WithWriter(&b), logger.WithFormat(logger.FormatJSON)),
		)

		multi.With("request_id", "req-1").WithGroup("answer").Info("done", "length", 5)

		for _, buf := range []*bytes.Buffer{&a, &b} {
			rec := decodeLines(buf)[0]
			Expect(rec).To(HaveKeyWithValue("request_id", "req-1"))
			Expect(rec).To(HaveKeyWithValue("answer", HaveKeyWithValue("length", BeNumerically("==", 5))))
		}
	})

	It("skips nil loggers and flattens nested multis", func() {
		var a, b bytes.Buffer
		inner := logger.Multi(logger.New(logger.WithWriter(&a)), nil)
		outer := logger.Multi(inner, logger.New(logger.WithWriter(&b)))

		outer.Info("flattened")
		Expect(a.String()).To(ContainSubstring("flattened"))
		Expect(b.String()).To(ContainSubstring("flattened"))
	})

	It("keeps dispatching past a failing handler and joins the errors", func() {
		var buf bytes.Buffer
		boom := errors.New("disk full")
		failing := slog.New(failingHandler{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil), err: boom})
		multi := logger.Multi(failing, logger.New(logger.WithWriter(&buf)))

		var r slog.Record
		r.Level = slog.LevelInfo
		r.Message = "still written"
		err := multi.Handler().Handle(context.Background(), r)

		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("still written"))
	})
})
