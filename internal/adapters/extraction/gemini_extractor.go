package extraction

import (
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/platform/obs"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

const transcribePrompt = `Transcribe every line of text in this document exactly as printed.
Keep line breaks. Do not summarize, translate or add commentary.
Output plain text only.`

// GeminiExtractor implements TextExtractor with the Gemini generateContent API.
// Images and PDFs are sent inline; at most maxInFlight calls run at once.
//
// The extractor is safe for concurrent use.
type GeminiExtractor struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	model    string
	inFlight *semaphore.Weighted
}

const maxInFlight = 2

func NewGeminiExtractor(apiKey, model string) (*GeminiExtractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiExtractor{
		session:  &http.Client{Timeout: 90 * time.Second},
		apiKey:   apiKey,
		baseURL:  "https://generativelanguage.googleapis.com",
		model:    model,
		inFlight: semaphore.NewWeighted(maxInFlight),
	}, nil
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

var supportedMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
}

func (g *GeminiExtractor) ExtractText(ctx context.Context, document []byte, mimeType string) (_ string, err error) {
	defer obs.Time(ctx, "extraction.gemini.ExtractText")(&err)

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if !supportedMIME[mimeType] {
		return "", &domain.IngestionError{Reason: fmt.Sprintf("unsupported document type %q", mimeType)}
	}

	if err := g.inFlight.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer g.inFlight.Release(1)

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(document)}},
				{Text: transcribePrompt},
			},
		}},
	}

	var gr generateResponse
	if err := g.post(ctx, "generateContent", req, &gr); err != nil {
		return "", g.serviceError(err)
	}
	if gr.Error != nil {
		return "", g.serviceError(errors.New(gr.Error.Message))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", g.serviceError(errors.New("empty response"))
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func (g *GeminiExtractor) serviceError(err error) error {
	return &domain.ExternalServiceError{Service: "gemini", Err: err}
}
