// Package sse provides a small, purpose-built SSE (Server-Sent Events)
// reader for consuming answer streams. Raw network chunks are decoded as
// UTF-8 with decoder state carried across reads, split into frames on blank
// lines, and parsed into Event records. The reader can optionally tee the raw
// bytes to a destination writer so a stream can be recorded and replayed.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	// SentinelDone is the termination payload some servers send last.
	SentinelDone = "[DONE]"

	// SentinelEmpty is an empty JSON object payload carrying no information.
	SentinelEmpty = "{}"
)

// endOfStreamTypes are the event types that mark the end of a stream.
var endOfStreamTypes = map[string]bool{
	"end":           true,
	"end_of_stream": true,
	"done":          true,
}

// Event represents a single parsed SSE event, delimited by a blank line
// in the upstream byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the payload of the last "data:" line in the frame, trimmed
	// of surrounding whitespace.
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string

	// Trailing is set when the event was parsed from the incomplete buffer
	// left over when the source was exhausted.
	Trailing bool
}

// IsSentinel reports whether the payload carries nothing to extract.
func IsSentinel(data string) bool {
	return data == "" || data == SentinelDone || data == SentinelEmpty
}

// IsEndOfStream reports whether an event type signals the end of the stream.
func IsEndOfStream(eventType string) bool {
	return endOfStreamTypes[strings.ToLower(eventType)]
}

// EndOfStream reports whether the event signals the end of the stream.
func (e *Event) EndOfStream() bool {
	return IsEndOfStream(e.Type)
}

// Skippable reports whether the event has no payload worth decoding.
func (e *Event) Skippable() bool {
	return IsSentinel(e.Data)
}

// ParseFrame parses one blank-line delimited frame into an Event.
//
// Per the SSE spec, a line has the form "field:value" where the first
// space after the colon is optional and stripped if present. Multiple data
// lines are not joined as the spec would: the last one wins.
func ParseFrame(frame string) Event {
	var ev Event

	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "data":
			ev.Data = strings.TrimSpace(value)
		case "event":
			ev.Type = strings.TrimSpace(value)
		case "id":
			ev.ID = value
		default:
			// "retry" and unknown fields are ignored.
		}
	}

	return ev
}
