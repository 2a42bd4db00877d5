package sse

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeError reports a malformed UTF-8 sequence in the byte stream.
type DecodeError struct {
	// Offset is the position of the offending byte from the start of the stream.
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding stream at byte %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder converts successive byte chunks into text. A multi-byte UTF-8
// sequence split across two chunks is held back until it is complete, so the
// decoded text does not depend on where the network split the stream.
type Decoder struct {
	validator transform.Transformer
	pending   []byte
	offset    int64
	started   bool
}

// NewDecoder returns a Decoder for a new stream.
func NewDecoder() *Decoder {
	return &Decoder{validator: encoding.UTF8Validator}
}

// Decode decodes the next chunk. Bytes of an incomplete trailing sequence are
// retained for the next call.
func (d *Decoder) Decode(chunk []byte) (string, error) {
	return d.decode(chunk, false)
}

// Flush decodes whatever is still pending once the stream has ended. A
// sequence that never completed is reported as a DecodeError.
func (d *Decoder) Flush() (string, error) {
	return d.decode(nil, true)
}

func (d *Decoder) decode(chunk []byte, atEOF bool) (string, error) {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}

	if !d.started {
		// Hold a possible byte order mark until enough bytes arrived to tell.
		if !atEOF && len(src) < len(utf8BOM) && bytes.HasPrefix(utf8BOM, src) {
			d.pending = append([]byte(nil), src...)
			return "", nil
		}
		if bytes.HasPrefix(src, utf8BOM) {
			src = src[len(utf8BOM):]
			d.offset += int64(len(utf8BOM))
		}
		d.started = true
	}

	if len(src) == 0 {
		return "", nil
	}

	dst := make([]byte, len(src))
	nDst, nSrc, err := d.validator.Transform(dst, src, atEOF)
	d.offset += int64(nSrc)

	switch {
	case err == nil:
	case errors.Is(err, transform.ErrShortSrc):
		d.pending = append([]byte(nil), src[nSrc:]...)
	default:
		return "", &DecodeError{Offset: d.offset, Err: err}
	}

	return string(dst[:nDst]), nil
}
