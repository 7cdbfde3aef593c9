// Package ingest parses uploaded CSV files and keeps the latest table per
// category in a pluggable Store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// PreviewRows is the number of parsed rows echoed back after an upload.
const PreviewRows = 3

// Result is returned to the uploader after a successful ingest.
type Result struct {
	Success  bool                `json:"success"`
	Category string              `json:"category"`
	FileName string              `json:"fileName"`
	Headers  []string            `json:"headers"`
	RowCount int                 `json:"rowCount"`
	Preview  []map[string]string `json:"preview"`
}

// Service validates, parses and stores uploads.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the timestamp source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ingest validates the upload, parses text and overwrites the category's
// stored record. The store is left untouched on every error path.
func (s *Service) Ingest(ctx context.Context, category, fileName, text string) (*Result, error) {
	if category == "" || fileName == "" {
		return nil, ErrMissingField
	}
	if !strings.HasSuffix(fileName, ".csv") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, fileName)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInternal, fileName)
	}

	table := ParseCSV(text)
	if len(table.Headers) == 0 {
		return nil, ErrEmptyFile
	}

	rec := &Record{
		Category:   category,
		FileName:   fileName,
		Headers:    table.Headers,
		Rows:       table.Rows,
		RowCount:   table.RowCount,
		UploadedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: store %s: %v", ErrInternal, category, err)
	}

	slog.Info("upload ingested", "category", category, "file", fileName, "rows", table.RowCount)

	preview := table.Rows
	if len(preview) > PreviewRows {
		preview = preview[:PreviewRows]
	}
	return &Result{
		Success:  true,
		Category: category,
		FileName: fileName,
		Headers:  table.Headers,
		RowCount: table.RowCount,
		Preview:  preview,
	}, nil
}

// IngestReader reads the whole upload from r and calls Ingest.
func (s *Service) IngestReader(ctx context.Context, category, fileName string, r io.Reader) (*Result, error) {
	if category == "" || fileName == "" || r == nil {
		return nil, ErrMissingField
	}
	if !strings.HasSuffix(fileName, ".csv") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFileType, fileName)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInternal, fileName, err)
	}
	return s.Ingest(ctx, category, fileName, string(data))
}

// ListUploads returns a summary of every stored category.
func (s *Service) ListUploads(ctx context.Context) ([]Summary, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list uploads: %v", ErrInternal, err)
	}
	out := make([]Summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Summary())
	}
	return out, nil
}

// Get returns the full stored record for category.
func (s *Service) Get(ctx context.Context, category string) (*Record, error) {
	rec, err := s.store.Get(ctx, category)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrInternal, category, err)
	}
	return rec, nil
}
