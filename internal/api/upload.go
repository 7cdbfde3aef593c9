package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/retailpilot/backend/internal/ingest"
	"github.com/retailpilot/backend/internal/ledger"
)

// Client-facing upload messages.
const (
	msgMissingField    = "Missing category or file"
	msgInvalidFileType = "Only CSV files are accepted"
	msgEmptyFile       = "CSV file is empty or invalid"
	msgInternal        = "Failed to process file"
	msgTooLarge        = "File too large"
	msgUploadNotFound  = "Upload not found"
)

// multipartMemory is how much of a form is buffered in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// POST /api/v1/upload (multipart: category, file)
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.countUpload("", "too_large")
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		// not multipart at all, or a broken body
		slog.Warn("upload form unreadable", "error", err)
		s.countUpload("", "error")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	defer r.MultipartForm.RemoveAll()

	category := r.FormValue("category")
	file, header, err := r.FormFile("file")
	if err != nil || category == "" {
		s.countUpload(category, "missing_field")
		writeError(w, http.StatusBadRequest, msgMissingField)
		return
	}
	defer file.Close()

	res, err := s.uploads.IngestReader(r.Context(), category, header.Filename, file)
	if err != nil {
		s.writeIngestError(w, category, err)
		return
	}

	s.countUpload(category, "ok")
	s.metrics.UploadRows.WithLabelValues(metricCategory(category)).Observe(float64(res.RowCount))
	s.recordLedger(ledger.TypeDataUpload, map[string]interface{}{
		"category": res.Category,
		"fileName": res.FileName,
		"records":  res.RowCount,
	})

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeIngestError(w http.ResponseWriter, category string, err error) {
	switch {
	case errors.Is(err, ingest.ErrMissingField):
		s.countUpload(category, "missing_field")
		writeError(w, http.StatusBadRequest, msgMissingField)
	case errors.Is(err, ingest.ErrInvalidFileType):
		s.countUpload(category, "invalid_type")
		writeError(w, http.StatusBadRequest, msgInvalidFileType)
	case errors.Is(err, ingest.ErrEmptyFile):
		s.countUpload(category, "empty")
		writeError(w, http.StatusBadRequest, msgEmptyFile)
	default:
		slog.Error("upload failed", "category", category, "error", err)
		s.countUpload(category, "error")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func (s *Server) countUpload(category, result string) {
	s.metrics.UploadsTotal.WithLabelValues(metricCategory(category), result).Inc()
}

// metricCategory keeps the category label bounded: any category the client
// invents is counted as "other".
func metricCategory(category string) string {
	if ingest.IsCategory(category) {
		return category
	}
	return "other"
}

// GET /api/v1/upload
func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := s.uploads.ListUploads(r.Context())
	if err != nil {
		slog.Error("list uploads failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uploads":         uploads,
		"totalCategories": len(uploads),
	})
}

// GET /api/v1/upload/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": ingest.Categories(),
	})
}

// GET /api/v1/upload/{category}
func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	rec, err := s.uploads.Get(r.Context(), category)
	if errors.Is(err, ingest.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUploadNotFound)
		return
	}
	if err != nil {
		slog.Error("get upload failed", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
