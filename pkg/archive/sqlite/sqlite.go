// Package sqlite provides a SQLite-backed archive driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/askstream/pkg/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS answers (
	id              TEXT PRIMARY KEY,
	generation      INTEGER NOT NULL,
	question        TEXT NOT NULL,
	answer          TEXT NOT NULL,
	sources         TEXT NOT NULL,
	related_queries TEXT,
	endpoint        TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS answers_created_at ON answers (created_at DESC);
`

const selectColumns = `id, generation, question, answer, sources, related_queries, endpoint, created_at`

// Driver implements archive.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (creating if needed) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Put stores a record. Returns true if the record was newly inserted.
func (d *Driver) Put(ctx context.Context, rec *archive.Record) (bool, error) {
	if rec == nil {
		return false, archive.ErrNilRecord
	}

	sources, err := json.Marshal(rec.Sources)
	if err != nil {
		return false, fmt.Errorf("marshaling sources: %w", err)
	}

	var related sql.NullString
	if rec.RelatedQueries != nil {
		b, err := json.Marshal(rec.RelatedQueries)
		if err != nil {
			return false, fmt.Errorf("marshaling related queries: %w", err)
		}
		related = sql.NullString{String: string(b), Valid: true}
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO answers (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		int64(rec.Generation),
		rec.Question,
		rec.Answer,
		string(sources),
		related,
		rec.Endpoint,
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}
	return n > 0, nil
}

// Get retrieves a record by its ID.
func (d *Driver) Get(ctx context.Context, id string) (*archive.Record, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM answers WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, archive.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting record %s: %w", id, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first.
func (d *Driver) List(ctx context.Context, limit int) ([]*archive.Record, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM answers ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []*archive.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("listing records: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*archive.Record, error) {
	var (
		rec        archive.Record
		generation int64
		sources    string
		related    sql.NullString
		createdAt  int64
	)

	err := s.Scan(&rec.ID, &generation, &rec.Question, &rec.Answer, &sources, &related, &rec.Endpoint, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sources), &rec.Sources); err != nil {
		return nil, fmt.Errorf("decoding sources of %s: %w", rec.ID, err)
	}
	if related.Valid {
		if err := json.Unmarshal([]byte(related.String), &rec.RelatedQueries); err != nil {
			return nil, fmt.Errorf("decoding related queries of %s: %w", rec.ID, err)
		}
	}

	rec.Generation = uint64(generation)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}

var _ archive.Driver = (*Driver)(nil)
