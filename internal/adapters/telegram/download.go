package telegram

import (
	"bus-schedule-bot/internal/ingest"
	"context"
	"fmt"
	"io"
	"net/http"
)

// download fetches a file by id. At most maxUploadBytes+1 bytes are read, so an
// oversized upload is still visible as such to the handler.
func (b *Bot) download(ctx context.Context, fileID, name, mimeType string) (ingest.Document, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return ingest.Document{}, fmt.Errorf("download %s: resolve: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ingest.Document{}, fmt.Errorf("download %s: new request: %w", fileID, err)
	}

	resp, err := b.session.Do(req)
	if err != nil {
		return ingest.Document{}, fmt.Errorf("download %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ingest.Document{}, fmt.Errorf("download %s: status=%d", fileID, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if b.maxUploadBytes > 0 {
		body = io.LimitReader(resp.Body, b.maxUploadBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return ingest.Document{}, fmt.Errorf("download %s: read: %w", fileID, err)
	}

	return ingest.Document{Name: name, MIMEType: mimeType, Data: data}, nil
}
