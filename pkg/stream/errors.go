package stream

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/askstream/pkg/sse"
)

var (
	// ErrNilBody indicates a response arrived without a body to stream.
	ErrNilBody = errors.New("response body is nil")

	// ErrStreamFinished is returned by Run on a stream that already reached
	// a terminal phase.
	ErrStreamFinished = errors.New("stream already finished")
)

// TransportError is a fatal network-level failure: a non-success HTTP status,
// a missing body, or a failed request or read.
type TransportError struct {
	StatusCode int    // HTTP status code, zero when no response was received
	Status     string // HTTP status text
	Body       string // Excerpt of the error response body
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Body != "":
		return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, e.Body)
	case e.StatusCode > 0:
		return fmt.Sprintf("transport error (status %d): %s", e.StatusCode, e.Status)
	default:
		return fmt.Sprintf("transport error: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FrameParseError reports a frame whose data is not a usable JSON payload.
// It is never fatal: frames cut at a chunk boundary produce it routinely, so
// the frame is logged and skipped.
type FrameParseError struct {
	Data     string
	Trailing bool
	Err      error
}

func (e *FrameParseError) Error() string {
	return fmt.Sprintf("parsing frame data: %v", e.Err)
}

func (e *FrameParseError) Unwrap() error {
	return e.Err
}

// DecodeError reports a corrupted byte stream. It is fatal.
type DecodeError = sse.DecodeError
