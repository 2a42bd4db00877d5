// Package stream drives a single answer stream from raw response bytes to
// handler callbacks. It owns the lifecycle of the stream: framing, payload
// extraction, completion detection, and the exactly-once terminal callback.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/papercomputeco/askstream/pkg/assembler"
	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/logger"
	"github.com/papercomputeco/askstream/pkg/sse"
)

// Phase is the lifecycle state of a Stream.
type Phase int

const (
	// PhaseStreaming reads and applies frames.
	PhaseStreaming Phase = iota

	// PhaseCompleting has seen a completion marker and keeps applying
	// frames until the body ends.
	PhaseCompleting

	// PhaseDone delivered OnComplete.
	PhaseDone

	// PhaseFailed delivered OnError.
	PhaseFailed

	// PhaseCanceled was abandoned by its caller. No terminal callback is
	// delivered.
	PhaseCanceled
)

func (p Phase) String() string {
	switch p {
	case PhaseStreaming:
		return "streaming"
	case PhaseCompleting:
		return "completing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	case PhaseCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further callbacks can happen in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseCanceled
}

// Stream processes one response body. It is single use and not safe for
// concurrent use; callbacks run on the goroutine calling Run.
type Stream struct {
	handler   Handler
	assembler *assembler.Assembler
	config    config
	logger    *slog.Logger
	phase     Phase
}

// New creates a Stream delivering to handler.
func New(handler Handler, opts ...Option) *Stream {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if c.requestID == "" {
		c.requestID = uuid.NewString()
	}

	l := c.logger.With("request_id", c.requestID, "generation", c.generation)

	return &Stream{
		handler:   handler,
		assembler: assembler.New(l),
		config:    c,
		logger:    l,
		phase:     PhaseStreaming,
	}
}

// Phase returns the current lifecycle phase.
func (s *Stream) Phase() Phase {
	return s.phase
}

// RequestID returns the id attached to the stream and its Response.
func (s *Stream) RequestID() string {
	return s.config.requestID
}

// Generation returns the generation the stream was tagged with.
func (s *Stream) Generation() uint64 {
	return s.config.generation
}

// Run reads body to its end, invoking the handler as the answer grows.
//
// Exactly one of OnComplete or OnError is called, unless ctx is canceled
// first: cancellation suppresses every later callback, closes body when it is
// an io.Closer, and makes Run return ctx.Err(). Otherwise Run returns the
// error passed to OnError, or nil after OnComplete.
func (s *Stream) Run(ctx context.Context, body io.Reader) error {
	if s.phase.Terminal() {
		return ErrStreamFinished
	}
	if body == nil {
		err := &TransportError{Err: ErrNilBody}
		s.Fail(err)
		return err
	}

	// Unblock a pending Read when the caller abandons the stream.
	if closer, ok := body.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = closer.Close()
		})
		defer stop()
	}

	reader := sse.NewTeeReader(body, s.config.tee)
	s.logger.Debug("stream started")

	for {
		if err := ctx.Err(); err != nil {
			return s.Cancel(err)
		}

		ev, err := reader.Next()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return s.Cancel(ctxErr)
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				err = &TransportError{Err: fmt.Errorf("reading stream: %w", err)}
			}
			s.Fail(err)
			return err
		}
		if ev == nil {
			break
		}

		s.handleEvent(ctx, ev)
	}

	if err := ctx.Err(); err != nil {
		return s.Cancel(err)
	}

	s.complete()
	return nil
}

// Fail moves the stream to PhaseFailed and delivers err through OnError. It
// is a no-op once the stream reached a terminal phase, so callers may funnel
// errors from outside Run (such as a failed request) through it.
func (s *Stream) Fail(err error) {
	if s.phase.Terminal() {
		return
	}
	s.phase = PhaseFailed
	s.logger.Warn("stream failed", "error", err)
	s.handler.OnError(err)
}

// Cancel abandons the stream without any callback and returns err.
func (s *Stream) Cancel(err error) error {
	if !s.phase.Terminal() {
		s.phase = PhaseCanceled
		s.logger.Debug("stream canceled", "error", err)
	}
	return err
}

func (s *Stream) handleEvent(ctx context.Context, ev *sse.Event) {
	if ev.EndOfStream() {
		s.markCompleting("end-of-stream event", "type", ev.Type)
		return
	}
	if ev.Skippable() {
		return
	}

	payload, err := blocks.ParsePayload([]byte(ev.Data))
	if err != nil {
		perr := &FrameParseError{Data: ev.Data, Trailing: ev.Trailing, Err: err}
		s.logger.Debug("skipping frame", "error", perr, "trailing", ev.Trailing)
		return
	}

	delta := s.assembler.Apply(blocks.Extract(payload))
	if delta.AnswerChanged && ctx.Err() == nil {
		s.handler.OnChunk(s.assembler.Answer())
	}
	if delta.Completed {
		s.enterCompleting("completion marker", "status", payload.Status, "final", payload.FinalSSEMessage)
	}
}

// markCompleting records a completion signal that arrived outside a payload.
func (s *Stream) markCompleting(reason string, args ...any) {
	if s.assembler.MarkCompleted() {
		s.enterCompleting(reason, args...)
	}
}

func (s *Stream) enterCompleting(reason string, args ...any) {
	if s.phase != PhaseStreaming {
		return
	}
	s.phase = PhaseCompleting
	s.logger.Debug("stream completing", append([]any{"reason", reason}, args...)...)
}

func (s *Stream) complete() {
	s.phase = PhaseDone
	resp := s.response()
	s.logger.Debug("stream complete",
		"answer_length", len(resp.Answer),
		"sources", len(resp.Sources),
		"related_queries", len(resp.RelatedQueries),
	)
	s.handler.OnComplete(resp)
}

func (s *Stream) response() *Response {
	state := s.assembler.Snapshot()

	sources := state.Sources
	if sources == nil {
		sources = []blocks.NormalizedSource{}
	}

	var related []string
	if len(state.RelatedQueries) > 0 {
		related = state.RelatedQueries
	}

	return &Response{
		Answer:         state.FullAnswer,
		Sources:        sources,
		RelatedQueries: related,
		Generation:     s.config.generation,
		RequestID:      s.config.requestID,
	}
}
