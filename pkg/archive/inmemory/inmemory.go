// Package inmemory provides an archive.Driver backed by a map.
package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/askstream/pkg/archive"
)

// Driver implements archive.Driver using an in-memory map.
type Driver struct {
	// mu guards records
	mu sync.RWMutex

	// records maps request ids to records
	records map[string]*archive.Record
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*archive.Record),
	}
}

// Put stores a record. Returns true if the record was newly inserted.
func (d *Driver) Put(_ context.Context, rec *archive.Record) (bool, error) {
	if rec == nil {
		return false, archive.ErrNilRecord
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.records[rec.ID]; ok {
		return false, nil
	}

	stored := *rec
	d.records[rec.ID] = &stored
	return true, nil
}

// Get retrieves a record by its ID.
func (d *Driver) Get(_ context.Context, id string) (*archive.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[id]
	if !ok {
		return nil, archive.NotFoundError{ID: id}
	}

	out := *rec
	return &out, nil
}

// List returns up to limit records, newest first.
func (d *Driver) List(_ context.Context, limit int) ([]*archive.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	records := make([]*archive.Record, 0, len(d.records))
	for _, rec := range d.records {
		out := *rec
		records = append(records, &out)
	}

	slices.SortFunc(records, func(a, b *archive.Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the number of records in the store.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ archive.Driver = (*Driver)(nil)
