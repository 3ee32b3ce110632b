package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/physiohub/clinic-assistant/pkg/config"
)

// ExtractorClient is a minimal client for chat-completion style extraction
// calls used to turn a consultation transcript into structured clinical
// fields. The response is constrained to a single JSON object.
type ExtractorClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewExtractorClient creates an extraction client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewExtractorClient(cfg *config.ExtractorConfig) *ExtractorClient {
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
		apiKey = os.Getenv("EXTRACTOR_API_KEY")
	}
	if base == "" {
		base = os.Getenv("EXTRACTOR_API_URL")
		if base == "" {
			base = "https://api.groq.com"
		}
	}
	if model == "" {
		model = "llama-3.1-70b-versatile"
	}

	return &ExtractorClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       interface{}     `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat constrains the completion output shape
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// clinicalSchemaInstruction is the fixed system instruction describing the
// exact output schema. The model must use null for anything unstated and
// may only set boolean symptom flags on explicit mention or denial.
const clinicalSchemaInstruction = `You are a clinical documentation assistant for a physiotherapy clinic.
Extract structured clinical data from the doctor/patient conversation transcript.
Return a single JSON object with exactly this shape:
{
  "soap": {
    "subjective": string|null,
    "objective": string|null,
    "assessment": string|null,
    "plan": string|null
  },
  "custom": {
    "pain": {"painsite": string|null, "painside": string|null, "painnature": string|null, "painsevirity": number|null, "painDiurnal": string|null, "painAggravating": string|null, "painRelieving": string|null, "painOnset": string|null, "painDuration": string|null, "painRadiation": string|null, "painFrequency": string|null},
    "history": {"presentHistory": string|null, "pastHistory": string|null, "medicalHistory": string|null, "surgicalHistory": string|null, "familyHistory": string|null, "personalHistory": string|null, "medications": string|null, "allergies": string|null},
    "chiefcomplaints": {"fever": boolean|null, "trauma": boolean|null, "weightloss": boolean|null, "nightpain": boolean|null, "numbness": boolean|null, "complaint": string|null, "duration": string|null, "onset": string|null, "progression": string|null},
    "examination": {"observation": string|null, "palpation": string|null, "rom": string|null, "specialTests": string|null, "gait": string|null, "posture": string|null, "swelling": string|null, "tenderness": string|null},
    "motor": {"muscleStrength": string|null, "muscleTone": string|null, "coordination": string|null, "reflexes": string|null, "atrophy": string|null, "involuntaryMovements": string|null},
    "sensory": {"lightTouch": string|null, "pinprick": string|null, "vibration": string|null, "proprioception": string|null, "temperature": string|null},
    "pediatric": {"birthHistory": string|null, "milestones": string|null, "immunization": string|null, "development": string|null, "feeding": string|null, "schooling": string|null}
  }
}
Rules:
- painnature must be one of: sharp, dull, aching, burning, throbbing, shooting, stabbing, cramping.
- painsevirity is an integer from 1 to 10.
- painDiurnal must be one of: morning, evening, night, constant.
- Use null for any field the transcript does not state. Never infer or invent values.
- Boolean fields: true only on explicit positive mention, false only on explicit denial, null otherwise.
- Respond with the JSON object only.`

// ExtractClinicalRecord sends the transcript with the fixed schema
// instruction and returns the raw assistant content (a JSON string).
func (e *ExtractorClient) ExtractClinicalRecord(ctx context.Context, transcript string) (string, error) {
	reqBody := ChatRequest{
		Model: e.model,
		Messages: []map[string]string{
			{"role": "system", "content": clinicalSchemaInstruction},
			{"role": "user", "content": transcript},
		},
		Temperature:    0.1,
		MaxTokens:      4000,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := e.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from extraction service")
	}
	return cr.Choices[0].Message.Content, nil
}
