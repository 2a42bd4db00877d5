package stream

import (
	"context"
	"io"
	"iter"
)

// EventKind discriminates the values yielded by Events.
type EventKind int

const (
	EventChunk EventKind = iota
	EventComplete
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventComplete:
		return "complete"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one handler callback rendered as a value.
type Event struct {
	Kind     EventKind
	Answer   string    // set for EventChunk
	Response *Response // set for EventComplete
	Err      error     // set for EventError
}

// Events runs a stream over body and yields its callbacks as a sequence. The
// last value is always an EventComplete or EventError unless ctx is canceled
// first. Breaking out of the loop cancels the stream and closes body when it
// is an io.Closer.
//
// The sequence consumes body and can only be ranged over once.
func Events(ctx context.Context, body io.Reader, opts ...Option) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		emit := func(ev Event) {
			if stopped {
				return
			}
			if !yield(ev) {
				stopped = true
				cancel()
			}
		}

		h := HandlerFuncs{
			Chunk: func(answer string) {
				emit(Event{Kind: EventChunk, Answer: answer})
			},
			Complete: func(resp *Response) {
				emit(Event{Kind: EventComplete, Response: resp})
			},
			Error: func(err error) {
				emit(Event{Kind: EventError, Err: err})
			},
		}

		_ = New(h, opts...).Run(ctx, body)
	}
}
