// Package clinical provides the HTTP client for the clinical records API:
// one SOAP CRUD sub-path per note type and one assessment create path per
// category. The consultation core only depends on the RecordsAPI interface,
// so it runs unchanged against this service's own records endpoints or any
// other server speaking the same contract.
package clinical

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
	"github.com/physiohub/clinic-assistant/pkg/config"
)

// RecordsAPI is the persistence collaborator contract used by the
// consultation core.
type RecordsAPI interface {
	CreateNote(ctx context.Context, noteType entities.NoteType, req CreateNoteRequest) (string, error)
	ListNotes(ctx context.Context, noteType entities.NoteType, patientID string) ([]entities.NoteRecord, error)
	UpdateNote(ctx context.Context, noteType entities.NoteType, id string, req UpdateNoteRequest) error
	DeleteNote(ctx context.Context, noteType entities.NoteType, id string) error
	CreateAssessment(ctx context.Context, category entities.AssessmentCategory, payload map[string]any) (string, error)
}

// CreateNoteRequest is the POST /soap/{type} payload
type CreateNoteRequest struct {
	PatientID string    `json:"patientId"`
	Content   string    `json:"content"`
	DoctorID  int64     `json:"doctorId"`
	Date      time.Time `json:"date"`
	Role      string    `json:"role"`
}

// UpdateNoteRequest is the PUT /soap/{type}/{id} payload
type UpdateNoteRequest struct {
	PatientID string    `json:"patientID"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
}

// noteListItem is one GET /soap/{type}/{patientId} element
type noteListItem struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

type createResponse struct {
	ID string `json:"id"`
}

// Client talks to the clinical records API over HTTP
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a records API client from the clinical config
func NewClient(cfg *config.ClinicalConfig) *Client {
	timeout := 15 * time.Second
	base := ""
	if cfg != nil {
		base = cfg.BaseURL
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateNote creates one SOAP note row and returns its id
func (c *Client) CreateNote(ctx context.Context, noteType entities.NoteType, req CreateNoteRequest) (string, error) {
	var resp createResponse
	endpoint := fmt.Sprintf("%s/soap/%s", c.baseURL, noteType)
	if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ListNotes fetches all notes of one type for a patient, tagged by type
func (c *Client) ListNotes(ctx context.Context, noteType entities.NoteType, patientID string) ([]entities.NoteRecord, error) {
	var items []noteListItem
	endpoint := fmt.Sprintf("%s/soap/%s/%s", c.baseURL, noteType, patientID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}

	records := make([]entities.NoteRecord, 0, len(items))
	for _, it := range items {
		records = append(records, entities.NoteRecord{
			ID:      it.ID,
			Type:    noteType,
			Date:    it.Date,
			Content: it.Content,
		})
	}
	return records, nil
}

// UpdateNote edits one SOAP note in place
func (c *Client) UpdateNote(ctx context.Context, noteType entities.NoteType, id string, req UpdateNoteRequest) error {
	endpoint := fmt.Sprintf("%s/soap/%s/%s", c.baseURL, noteType, id)
	return c.do(ctx, http.MethodPut, endpoint, req, nil)
}

// DeleteNote removes one SOAP note
func (c *Client) DeleteNote(ctx context.Context, noteType entities.NoteType, id string) error {
	endpoint := fmt.Sprintf("%s/soap/%s/%s", c.baseURL, noteType, id)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// CreateAssessment appends one assessment submission for a category
func (c *Client) CreateAssessment(ctx context.Context, category entities.AssessmentCategory, payload map[string]any) (string, error) {
	var resp createResponse
	endpoint := fmt.Sprintf("%s/assessments/%s", c.baseURL, category)
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// do executes one JSON round-trip against the records API
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("records API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
