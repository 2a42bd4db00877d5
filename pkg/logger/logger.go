// Package logger provides opinionated logging capabilities for askstream.
// Every component receives a *slog.Logger through its configuration; none of
// them log through a global.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Format selects the handler New builds.
type Format string

const (
	// FormatText is slog's logfmt-style text handler.
	FormatText Format = "text"

	// FormatJSON is slog's JSON handler, for log files and services.
	FormatJSON Format = "json"

	// FormatPretty is the colorized charmbracelet/log handler for terminals.
	FormatPretty Format = "pretty"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatPretty}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatPretty:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected text, json or pretty)", s)
	}
}

type config struct {
	level   slog.Level
	format  Format
	source  bool
	writers []io.Writer
	attrs   []any
}

// New creates a *slog.Logger. By default it writes text records at Info
// level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:   slog.LevelInfo,
		format:  FormatText,
		writers: []io.Writer{os.Stdout},
	}
	for _, opt := range opts {
		opt(c)
	}

	w := c.writers[0]
	if len(c.writers) > 1 {
		w = io.MultiWriter(c.writers...)
	}

	l := slog.New(c.handler(w))
	if len(c.attrs) > 0 {
		l = l.With(c.attrs...)
	}
	return l
}

func (c *config) handler(w io.Writer) slog.Handler {
	switch c.format {
	case FormatPretty:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     c.level,
			AddSource: c.source,
		})
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
