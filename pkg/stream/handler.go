package stream

import (
	"github.com/papercomputeco/askstream/pkg/blocks"
)

// Response is the final result of a stream, delivered exactly once through
// Handler.OnComplete.
type Response struct {
	Answer         string                    `json:"answer"`
	Sources        []blocks.NormalizedSource `json:"sources"`
	RelatedQueries []string                  `json:"related_queries,omitempty"`

	// Generation identifies the ask that produced the stream. Consumers
	// compare it against their current generation to drop late completions
	// from abandoned streams.
	Generation uint64 `json:"generation"`

	// RequestID uniquely identifies the stream.
	RequestID string `json:"request_id"`
}

// Handler receives the output of a stream. Calls happen synchronously on the
// goroutine running the stream, in frame arrival order. Implementations must
// not block: hand work off and return.
type Handler interface {
	// OnChunk receives the full current answer, not a delta. It is called
	// zero or more times, only when the answer changed.
	OnChunk(answer string)

	// OnComplete is called exactly once on normal termination.
	OnComplete(resp *Response)

	// OnError is called exactly once on failure, and never together with
	// OnComplete.
	OnError(err error)
}

// HandlerFuncs adapts plain functions to a Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Chunk    func(answer string)
	Complete func(resp *Response)
	Error    func(err error)
}

func (h HandlerFuncs) OnChunk(answer string) {
	if h.Chunk != nil {
		h.Chunk(answer)
	}
}

func (h HandlerFuncs) OnComplete(resp *Response) {
	if h.Complete != nil {
		h.Complete(resp)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}
