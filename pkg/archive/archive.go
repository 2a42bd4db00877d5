// Package archive persists completed answers.
package archive

import (
	"context"
	"slices"
	"time"

	"github.com/papercomputeco/askstream/pkg/blocks"
	"github.com/papercomputeco/askstream/pkg/stream"
)

// Record is one completed answer together with the question that produced it.
type Record struct {
	// ID is the request id of the stream.
	ID string `json:"id"`

	Generation     uint64                    `json:"generation"`
	Question       string                    `json:"question"`
	Answer         string                    `json:"answer"`
	Sources        []blocks.NormalizedSource `json:"sources"`
	RelatedQueries []string                  `json:"related_queries,omitempty"`

	// Endpoint is the URL the question was posted to.
	Endpoint  string    `json:"endpoint,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord builds a Record from a completed stream response.
func NewRecord(question, endpoint string, resp *stream.Response) *Record {
	return &Record{
		ID:             resp.RequestID,
		Generation:     resp.Generation,
		Question:       question,
		Answer:         resp.Answer,
		Sources:        slices.Clone(resp.Sources),
		RelatedQueries: slices.Clone(resp.RelatedQueries),
		Endpoint:       endpoint,
		CreatedAt:      time.Now().UTC(),
	}
}

// Driver defines the interface for persisting and retrieving answer records.
type Driver interface {
	// Put stores a record. Returns true if the record was newly inserted,
	// false if a record with the same ID already exists, in which case Put
	// is a no-op.
	Put(ctx context.Context, rec *Record) (bool, error)

	// Get retrieves a record by its ID.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first. A limit of zero or
	// less returns every record.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close closes the store and releases any resources.
	Close() error
}
