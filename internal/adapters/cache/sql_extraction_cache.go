package cache

import (
	"bus-schedule-bot/internal/platform/db"
	"bus-schedule-bot/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLExtractionCache maps a document digest to previously extracted text,
// so re-uploading the same scan does not call the OCR backend again.
type SQLExtractionCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLExtractionCache(conn *sql.DB, dialect db.Dialect) *SQLExtractionCache {
	return &SQLExtractionCache{DB: conn, Dialect: dialect}
}

// Fetch cached text for digest. ok is false on a miss.
func (s *SQLExtractionCache) Get(ctx context.Context, digest string) (text string, ok bool, err error) {
	defer obs.Time(ctx, "extraction.cache.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("extraction cache: db is nil")
	}

	q := s.Dialect.Rebind(`
	SELECT text
	FROM extraction_cache
	WHERE digest = ?;
	`)

	err = s.DB.QueryRowContext(ctx, q, digest).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get extraction cache: query extraction_cache table: %w", err)
	}

	return text, true, nil
}

// Store extracted text under digest, replacing any previous entry.
func (s *SQLExtractionCache) Put(ctx context.Context, digest, mimeType, text string) error {
	if s.DB == nil {
		return errors.New("extraction cache: db is nil")
	}

	if strings.TrimSpace(digest) == "" {
		return fmt.Errorf("insert extraction cache: empty digest")
	}

	q := s.Dialect.Rebind(`
	INSERT INTO extraction_cache (digest, mime_type, text)
	VALUES (?, ?, ?)
	ON CONFLICT (digest) DO UPDATE
	SET mime_type = excluded.mime_type,
		text = excluded.text;
	`)

	if _, err := s.DB.ExecContext(ctx, q, digest, mimeType, text); err != nil {
		return fmt.Errorf("insert extraction cache digest=%q: %w", digest, err)
	}

	return nil
}
