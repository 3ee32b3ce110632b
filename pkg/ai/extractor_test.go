package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

func TestExtractClinicalRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v", req.ResponseFormat)
		}

		messages, ok := req.Messages.([]interface{})
		if !ok || len(messages) != 2 {
			t.Errorf("expected system + user messages, got %v", req.Messages)
		} else {
			system := messages[0].(map[string]interface{})
			if !strings.Contains(system["content"].(string), "painsevirity") {
				t.Error("system instruction missing the schema")
			}
			user := messages[1].(map[string]interface{})
			if user["content"] != "my knee hurts" {
				t.Errorf("user content = %v", user["content"])
			}
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"soap": {"subjective": "knee pain"}}`}},
			},
		})
	}))
	defer server.Close()

	client := NewExtractorClient(&config.ExtractorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})

	content, err := client.ExtractClinicalRecord(context.Background(), "my knee hurts")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(content, "knee pain") {
		t.Fatalf("content = %q", content)
	}
}

func TestExtractClinicalRecordUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewExtractorClient(&config.ExtractorConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	if _, err := client.ExtractClinicalRecord(context.Background(), "transcript"); err == nil {
		t.Fatal("expected error for upstream 429")
	}
}

func TestExtractClinicalRecordEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewExtractorClient(&config.ExtractorConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	if _, err := client.ExtractClinicalRecord(context.Background(), "transcript"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
