package extraction

import (
	"context"
	"sync"
)

// StaticExtractor returns a fixed text or error. Used in tests and for
// running the bot without an OCR backend.
type StaticExtractor struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
}

func (s *StaticExtractor) ExtractText(ctx context.Context, document []byte, mimeType string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

func (s *StaticExtractor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
