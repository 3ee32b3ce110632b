package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

// AssemblyAIClient adapts the official AssemblyAI SDK to the synchronous
// Transcriber contract: upload the blob, submit a transcription job and
// poll until it completes or the configured wait elapses.
type AssemblyAIClient struct {
	sdk          *aai.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewAssemblyAIClient creates an AssemblyAI-backed transcriber using the
// provided config. Pass a nil config to fall back to environment variables.
func NewAssemblyAIClient(cfg *config.TranscriberConfig) *AssemblyAIClient {
	var apiKey string
	maxWait := 60 * time.Second

	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.Timeout > 0 {
			maxWait = cfg.Timeout
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	return &AssemblyAIClient{
		sdk:          aai.NewClient(apiKey),
		pollInterval: 3 * time.Second,
		maxWait:      maxWait,
	}
}

// Transcribe uploads the blob, submits it and polls for the final text
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio blob is empty")
	}

	uploadURL, err := c.sdk.Upload(ctx, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	transcript, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, &aai.TranscriptOptionalParams{})
	if err != nil {
		return "", fmt.Errorf("failed to submit transcription: %w", err)
	}
	if transcript.ID == nil {
		return "", fmt.Errorf("transcription job has no id")
	}
	transcriptID := *transcript.ID

	deadline := time.Now().Add(c.maxWait)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			if transcript.Text == nil {
				return "", nil
			}
			return strings.TrimSpace(*transcript.Text), nil

		case aai.TranscriptStatusError:
			msg := "transcription failed"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			return "", fmt.Errorf("assemblyai error: %s", msg)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("transcription timed out after %s", c.maxWait)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		transcript, err = c.sdk.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			return "", fmt.Errorf("failed to poll transcription: %w", err)
		}
	}
}
