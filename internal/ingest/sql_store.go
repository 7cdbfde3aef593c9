package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
)

// SQLStore keeps uploads in a PostgreSQL table. Open the *sql.DB with the
// "postgres" driver (github.com/lib/pq).
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore verifies the connection and creates the uploads table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &SQLStore{db: db}
	if err := s.createTableIfNotExists(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTableIfNotExists(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS uploads (
		created_seq BIGSERIAL,
		category    TEXT PRIMARY KEY,
		file_name   TEXT NOT NULL,
		headers     JSONB NOT NULL,
		rows        JSONB NOT NULL,
		row_count   INTEGER NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create uploads table: %w", err)
	}
	slog.Info("Table 'uploads' verified/created")
	return nil
}

func (s *SQLStore) Get(ctx context.Context, category string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT category, file_name, headers, rows, row_count, uploaded_at
		FROM uploads WHERE category = $1`, category)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rec, err
}

// Put upserts rec. created_seq is kept from the first insert so List order
// follows first upload.
func (s *SQLStore) Put(ctx context.Context, rec *Record) error {
	headers, err := json.Marshal(rec.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}
	rows, err := json.Marshal(rec.Rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO uploads (category, file_name, headers, rows, row_count, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			headers = EXCLUDED.headers,
			rows = EXCLUDED.rows,
			row_count = EXCLUDED.row_count,
			uploaded_at = EXCLUDED.uploaded_at`,
		rec.Category, rec.FileName, headers, rows, rec.RowCount, rec.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert upload %s: %w", rec.Category, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]*Record, error) {
	rs, err := s.db.QueryContext(ctx, `
		SELECT category, file_name, headers, rows, row_count, uploaded_at
		FROM uploads ORDER BY created_seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rs.Close()

	var out []*Record
	for rs.Next() {
		rec, err := scanRecord(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec           Record
		headers, rows []byte
	)
	if err := sc.Scan(&rec.Category, &rec.FileName, &headers, &rows, &rec.RowCount, &rec.UploadedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}
	if err := json.Unmarshal(headers, &rec.Headers); err != nil {
		return nil, fmt.Errorf("unmarshal headers: %w", err)
	}
	if err := json.Unmarshal(rows, &rec.Rows); err != nil {
		return nil, fmt.Errorf("unmarshal rows: %w", err)
	}
	return &rec, nil
}
