package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

// WhisperClient is a minimal client for whisper-style transcription
// endpoints: multipart form with model, file and response_format=text,
// returning the transcript as the plain-text response body.
type WhisperClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisperClient creates a transcription client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewWhisperClient(cfg *config.TranscriberConfig) *WhisperClient {
	var apiKey, base, model string
	timeout := 60 * time.Second

	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("TRANSCRIBER_API_KEY")
	}
	if base == "" {
		base = os.Getenv("TRANSCRIBER_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}
	if model == "" {
		model = "whisper-1"
	}

	return &WhisperClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio blob and returns the trimmed transcript text
func (w *WhisperClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio blob is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", w.model); err != nil {
		return "", err
	}
	if err := mw.WriteField("response_format", "text"); err != nil {
		return "", err
	}

	fw, err := mw.CreateFormFile("file", fileNameFor(mimeType))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := w.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return strings.TrimSpace(string(payload)), nil
}

// fileNameFor picks a filename extension the upstream accepts for the blob
func fileNameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "mp3"), strings.Contains(mimeType, "mpeg"):
		return "audio.mp3"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	default:
		return "audio.webm"
	}
}
