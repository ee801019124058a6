package extraction

import (
	"bus-schedule-bot/internal/ports"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
)

// TextCache stores extracted text by document digest.
type TextCache interface {
	Get(ctx context.Context, digest string) (string, bool, error)
	Put(ctx context.Context, digest, mimeType, text string) error
}

// CachingExtractor consults Cache before calling Next.
// Cache failures are logged and never fail an extraction.
type CachingExtractor struct {
	Next  ports.TextExtractor
	Cache TextCache
}

func NewCachingExtractor(next ports.TextExtractor, cache TextCache) *CachingExtractor {
	return &CachingExtractor{Next: next, Cache: cache}
}

func (c *CachingExtractor) ExtractText(ctx context.Context, document []byte, mimeType string) (string, error) {
	sum := sha256.Sum256(document)
	digest := hex.EncodeToString(sum[:])

	text, ok, err := c.Cache.Get(ctx, digest)
	if err != nil {
		log.Printf("extraction cache get failed: digest=%s err=%v", digest, err)
	} else if ok {
		return text, nil
	}

	text, err = c.Next.ExtractText(ctx, document, mimeType)
	if err != nil {
		return "", err
	}

	if err := c.Cache.Put(ctx, digest, mimeType, text); err != nil {
		log.Printf("extraction cache put failed: digest=%s err=%v", digest, err)
	}
	return text, nil
}
