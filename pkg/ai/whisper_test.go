package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

func TestWhisperTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if got := r.FormValue("response_format"); got != "text" {
			t.Errorf("response_format = %q", got)
		}
		w.Write([]byte("  patient reports knee pain\n"))
	}))
	defer server.Close()

	client := NewWhisperClient(&config.TranscriberConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "whisper-1",
		Timeout: 5 * time.Second,
	})

	text, err := client.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/webm")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "patient reports knee pain" {
		t.Fatalf("text = %q", text)
	}
}

func TestWhisperTranscribeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model overloaded"))
	}))
	defer server.Close()

	client := NewWhisperClient(&config.TranscriberConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	if _, err := client.Transcribe(context.Background(), []byte{1}, "audio/webm"); err == nil {
		t.Fatal("expected error for upstream 500")
	}
}

func TestWhisperTranscribeEmptyBlob(t *testing.T) {
	client := NewWhisperClient(&config.TranscriberConfig{Timeout: time.Second})
	if _, err := client.Transcribe(context.Background(), nil, "audio/webm"); err == nil {
		t.Fatal("expected error for empty blob")
	}
}

func TestFileNameFor(t *testing.T) {
	cases := map[string]string{
		"audio/wav":  "audio.wav",
		"audio/mpeg": "audio.mp3",
		"audio/ogg":  "audio.ogg",
		"audio/webm": "audio.webm",
		"":           "audio.webm",
	}
	for mimeType, want := range cases {
		if got := fileNameFor(mimeType); got != want {
			t.Fatalf("fileNameFor(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
