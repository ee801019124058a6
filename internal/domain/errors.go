package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Bad or missing command arguments. Usage is shown to the user verbatim.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return "usage: " + e.Usage }

// An unknown driver, route, date or station.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.Key) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(kind, key string) error { return &NotFoundError{Kind: kind, Key: key} }

// A row- or document-level parse failure during ingestion.
// Row is 1-based; 0 means the whole document.
type IngestionError struct {
	Row    int
	Reason string
}

func (e *IngestionError) Error() string {
	if e.Row == 0 {
		return "ingest: " + e.Reason
	}
	return fmt.Sprintf("ingest: row %d: %s", e.Row, e.Reason)
}

// A failure in the chat transport or the text-extraction backend.
// The wrapped error is logged; users only see a generic message.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string { return e.Service + ": " + e.Err.Error() }

func (e *ExternalServiceError) Unwrap() error { return e.Err }
