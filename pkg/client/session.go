package client

import (
	"context"
	"sync"

	"github.com/papercomputeco/askstream/pkg/stream"
)

// Session serializes asks from one consumer: starting an ask abandons the
// one in flight, and every ask gets the next generation number.
type Session struct {
	client *Client

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewSession creates a Session asking through c.
func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Ask cancels any in-flight ask, then asks question under a new generation
// and blocks until that stream ends. The abandoned ask delivers no further
// callbacks and returns its context error.
func (s *Session) Ask(ctx context.Context, question string, handler stream.Handler) (uint64, error) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.generation == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	return gen, s.client.Ask(ctx, question, handler, stream.WithGeneration(gen))
}

// IsCurrent reports whether gen belongs to the most recent ask.
func (s *Session) IsCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// Generation returns the generation of the most recent ask, zero before the
// first one.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Cancel abandons the in-flight ask, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
