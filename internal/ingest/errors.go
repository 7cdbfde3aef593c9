package ingest

import "errors"

var (
	ErrMissingField    = errors.New("missing category or file")
	ErrInvalidFileType = errors.New("only CSV files are accepted")
	ErrEmptyFile       = errors.New("csv file is empty or invalid")
	ErrInternal        = errors.New("failed to process file")
	ErrNotFound        = errors.New("upload not found")
)
