package stream

import (
	"io"
	"log/slog"
)

// Option configures a Stream created with New.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	generation uint64
	requestID  string
	tee        io.Writer
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithGeneration tags the stream with the generation of the ask that
// started it.
func WithGeneration(gen uint64) Option {
	return func(c *config) {
		c.generation = gen
	}
}

// WithRequestID overrides the generated request id.
func WithRequestID(id string) Option {
	return func(c *config) {
		c.requestID = id
	}
}

// WithTee copies every raw byte read from the body to w, e.g. to record a
// stream for later replay.
func WithTee(w io.Writer) Option {
	return func(c *config) {
		c.tee = w
	}
}
