package sse

import (
	"errors"
	"io"
	"strings"
)

const defaultReadSize = 32 * 1024

// Reader reads SSE events from a source io.Reader, optionally writing all raw
// bytes verbatim to a destination io.Writer as they are read.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │  Reader.Next()   │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │   Decoder
// │   Splitter
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// Each Read on the source is one network chunk: it is decoded, appended to the
// carry buffer and split into frames. Frames are handed out one per Next call.
type Reader struct {
	src  io.Reader
	dest io.Writer

	decoder  *Decoder
	splitter *Splitter
	buf      []byte

	// queue holds complete frames not yet returned by Next.
	queue []string

	eof     bool
	drained bool
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader) *Reader {
	return NewTeeReader(src, nil)
}

// NewTeeReader returns a Reader that parses SSE events from src and writes all
// raw bytes through to dest. A nil dest disables the tee.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	return &Reader{
		src:      src,
		dest:     dest,
		decoder:  NewDecoder(),
		splitter: &Splitter{},
		buf:      make([]byte, defaultReadSize),
	}
}

// Next returns the next parsed SSE event. It blocks until a complete event is
// available (terminated by a blank line in the stream).
//
// When the source is exhausted, whatever remains in the carry buffer is
// returned once as an event with Trailing set. After that Next returns
// nil, nil. Malformed UTF-8 is reported as a *DecodeError.
func (r *Reader) Next() (*Event, error) {
	for len(r.queue) == 0 {
		if r.eof {
			return r.trailing(), nil
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	frame := r.queue[0]
	r.queue = r.queue[1:]

	ev := ParseFrame(frame)
	return &ev, nil
}

// Carry returns the incomplete frame currently buffered.
func (r *Reader) Carry() string {
	return r.splitter.Carry()
}

// fill performs one read on the source and queues the frames it completes.
func (r *Reader) fill() error {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		chunk := r.buf[:n]
		if r.dest != nil {
			if _, werr := r.dest.Write(chunk); werr != nil {
				return werr
			}
		}

		text, derr := r.decoder.Decode(chunk)
		if derr != nil {
			return derr
		}
		r.queue = append(r.queue, r.splitter.Push(text)...)
	}

	if errors.Is(err, io.EOF) {
		text, derr := r.decoder.Flush()
		if derr != nil {
			return derr
		}
		r.queue = append(r.queue, r.splitter.Push(text)...)
		r.eof = true
		return nil
	}

	return err
}

// trailing yields the leftover carry buffer once, then nil.
func (r *Reader) trailing() *Event {
	if r.drained {
		return nil
	}
	r.drained = true

	carry := r.splitter.Flush()
	if strings.TrimSpace(carry) == "" {
		return nil
	}

	ev := ParseFrame(carry)
	ev.Trailing = true
	return &ev
}
