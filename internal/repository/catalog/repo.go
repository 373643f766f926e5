// Package catalog persists canonical sighting records in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

const schema = `
CREATE TABLE IF NOT EXISTS sightings (
	id            TEXT PRIMARY KEY,
	occurred_at   TEXT NOT NULL,
	occurred_unix INTEGER NOT NULL,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	city          TEXT NOT NULL,
	state         TEXT NOT NULL,
	object_type   TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	reliability   INTEGER
);

CREATE INDEX IF NOT EXISTS idx_sightings_occurred ON sightings(occurred_unix DESC);
`

const columns = `id, occurred_at, latitude, longitude, city, state, object_type, description, reliability`

// Repo implements usecase/sighting.Catalog.
type Repo struct {
	conn *sql.DB
}

// Open opens (or creates) the catalog database at path and applies the schema.
func Open(path string) (*Repo, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Repo{conn: conn}, nil
}

// Close closes the database.
func (r *Repo) Close() error {
	return r.conn.Close()
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

// Create inserts a new record.
func (r *Repo) Create(ctx context.Context, rec sighting.Record) error {
	_, err := r.conn.ExecContext(ctx, `
	INSERT INTO sightings (`+columns+`, occurred_unix)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, formatTime(rec.OccurredAt), rec.Latitude, rec.Longitude,
		rec.City, rec.State, rec.ObjectType, rec.Description, nullInt(rec.Reliability),
		rec.OccurredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert sighting %s: %w", rec.ID, err)
	}
	return nil
}

// Update replaces a stored record. Returns domain.ErrNotFound if absent.
func (r *Repo) Update(ctx context.Context, rec sighting.Record) error {
	res, err := r.conn.ExecContext(ctx, `
	UPDATE sightings SET
		occurred_at = ?, occurred_unix = ?, latitude = ?, longitude = ?,
		city = ?, state = ?, object_type = ?, description = ?, reliability = ?
	WHERE id = ?`,
		formatTime(rec.OccurredAt), rec.OccurredAt.Unix(), rec.Latitude, rec.Longitude,
		rec.City, rec.State, rec.ObjectType, rec.Description, nullInt(rec.Reliability),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update sighting %s: %w", rec.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sighting %s: %w", rec.ID, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (sighting.Record, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+columns+` FROM sightings WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sighting.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return sighting.Record{}, fmt.Errorf("get sighting %s: %w", id, err)
	}
	return rec, nil
}

// List returns records ordered by occurrence, most recent first.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]sighting.Record, error) {
	rows, err := r.conn.QueryContext(ctx, `
	SELECT `+columns+` FROM sightings
	ORDER BY occurred_unix DESC, id
	LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	var out []sighting.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sightings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sightings: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (sighting.Record, error) {
	var (
		rec         sighting.Record
		occurredAt  string
		reliability sql.NullInt64
	)
	err := s.Scan(&rec.ID, &occurredAt, &rec.Latitude, &rec.Longitude,
		&rec.City, &rec.State, &rec.ObjectType, &rec.Description, &reliability)
	if err != nil {
		return sighting.Record{}, err
	}

	rec.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return sighting.Record{}, fmt.Errorf("occurred_at %q: %w", occurredAt, err)
	}
	if reliability.Valid {
		v := int(reliability.Int64)
		rec.Reliability = &v
	}
	return rec, nil
}

// formatTime keeps the original UTC offset of the report.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
