package sse

import "strings"

const frameDelimiter = "\n\n"

// Splitter splits decoded text into complete frames on blank lines. The text
// after the last delimiter is kept as the carry buffer until a later Push
// completes it.
type Splitter struct {
	carry string

	// heldCR is set when the last pushed text ended in '\r', which may be
	// the first half of a "\r\n" pair.
	heldCR bool
}

// Push appends text to the carry buffer and returns every frame it completes,
// in arrival order. Frames holding only whitespace are dropped.
func (s *Splitter) Push(text string) []string {
	if s.heldCR {
		text = "\r" + text
		s.heldCR = false
	}
	if strings.HasSuffix(text, "\r") {
		text = text[:len(text)-1]
		s.heldCR = true
	}

	s.carry += strings.ReplaceAll(text, "\r\n", "\n")

	parts := strings.Split(s.carry, frameDelimiter)
	s.carry = parts[len(parts)-1]

	frames := make([]string, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		if strings.TrimSpace(part) == "" {
			continue
		}
		frames = append(frames, part)
	}

	return frames
}

// Carry returns the incomplete trailing frame.
func (s *Splitter) Carry() string {
	if s.heldCR {
		return s.carry + "\r"
	}
	return s.carry
}

// Flush returns the carry buffer and resets the splitter.
func (s *Splitter) Flush() string {
	carry := s.Carry()
	s.carry = ""
	s.heldCR = false
	return carry
}
