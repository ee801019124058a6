package ports

import "context"

// Contract with the external text-extraction (OCR) backend.
type TextExtractor interface {
	ExtractText(ctx context.Context, document []byte, mimeType string) (string, error)
}
