package consultation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	goerrors "errors"

	"github.com/physiohub/clinic-assistant/errors"
	"github.com/physiohub/clinic-assistant/internal/adapter/clinical"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// fakeRecordsAPI is an in-memory RecordsAPI used across the package tests
type fakeRecordsAPI struct {
	mu sync.Mutex

	notes       []clinical.CreateNoteRequest
	noteTypes   []entities.NoteType
	assessments map[entities.AssessmentCategory]map[string]any

	failCreateNote  map[entities.NoteType]error
	failAssessment  map[entities.AssessmentCategory]error
	listResults     map[entities.NoteType][]entities.NoteRecord
	listErrs        map[entities.NoteType]error
	deletedNoteIDs  []string
	updatedNoteIDs  []string
	onList          func()
}

func newFakeRecordsAPI() *fakeRecordsAPI {
	return &fakeRecordsAPI{
		assessments:    make(map[entities.AssessmentCategory]map[string]any),
		failCreateNote: make(map[entities.NoteType]error),
		failAssessment: make(map[entities.AssessmentCategory]error),
		listResults:    make(map[entities.NoteType][]entities.NoteRecord),
		listErrs:       make(map[entities.NoteType]error),
	}
}

func (f *fakeRecordsAPI) CreateNote(_ context.Context, noteType entities.NoteType, req clinical.CreateNoteRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failCreateNote[noteType]; err != nil {
		return "", err
	}
	f.notes = append(f.notes, req)
	f.noteTypes = append(f.noteTypes, noteType)
	return fmt.Sprintf("note-%d", len(f.notes)), nil
}

func (f *fakeRecordsAPI) ListNotes(_ context.Context, noteType entities.NoteType, _ string) ([]entities.NoteRecord, error) {
	if f.onList != nil {
		f.onList()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErrs[noteType]; err != nil {
		return nil, err
	}
	return f.listResults[noteType], nil
}

func (f *fakeRecordsAPI) UpdateNote(_ context.Context, _ entities.NoteType, id string, _ clinical.UpdateNoteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedNoteIDs = append(f.updatedNoteIDs, id)
	return nil
}

func (f *fakeRecordsAPI) DeleteNote(_ context.Context, _ entities.NoteType, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedNoteIDs = append(f.deletedNoteIDs, id)
	return nil
}

func (f *fakeRecordsAPI) CreateAssessment(_ context.Context, category entities.AssessmentCategory, payload map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failAssessment[category]; err != nil {
		return "", err
	}
	f.assessments[category] = payload
	return fmt.Sprintf("assessment-%s", category), nil
}

func TestPersistNothingToSave(t *testing.T) {
	api := newFakeRecordsAPI()
	coordinator := NewCoordinator(api, nil)

	_, err := coordinator.Persist(context.Background(), &entities.SanitizedExtraction{}, "p-1", 7)
	if err == nil {
		t.Fatal("expected NothingToSave error")
	}
	var appErr errors.AppError
	if !goerrors.As(err, &appErr) || appErr.Code != errors.ErrorCode_NOTHING_TO_SAVE {
		t.Fatalf("expected NOTHING_TO_SAVE, got %v", err)
	}
	if len(api.notes) != 0 || len(api.assessments) != 0 {
		t.Fatal("no write should have been issued")
	}
}

func TestPersistSettlesAllWrites(t *testing.T) {
	api := newFakeRecordsAPI()
	api.failCreateNote[entities.NoteTypeObjective] = fmt.Errorf("boom")
	api.failAssessment[entities.CategoryHistory] = fmt.Errorf("timeout")
	coordinator := NewCoordinator(api, nil)

	sanitized := &entities.SanitizedExtraction{
		SOAP: map[entities.NoteType]string{
			entities.NoteTypeSubjective: "reports pain",
			entities.NoteTypeObjective:  "limited ROM",
			entities.NoteTypePlan:       "ice and rest",
		},
		Forms: map[entities.AssessmentCategory]map[string]any{
			entities.CategoryPain:    {"painsite": "knee", "painsevirity": 6},
			entities.CategoryHistory: {"pastHistory": "none"},
		},
	}

	report, err := coordinator.Persist(context.Background(), sanitized, "p-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.SOAPAttempted != 3 || report.SOAPSucceeded != 2 || report.SOAPFailed != 1 {
		t.Fatalf("soap counts = %d/%d/%d", report.SOAPAttempted, report.SOAPSucceeded, report.SOAPFailed)
	}
	if report.FormsAttempted != 2 || report.FormsSucceeded != 1 || report.FormsFailed != 1 {
		t.Fatalf("form counts = %d/%d/%d", report.FormsAttempted, report.FormsSucceeded, report.FormsFailed)
	}
	if len(report.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", report.Failures)
	}
	if !report.AnySOAPSucceeded() {
		t.Fatal("partial SOAP success must still gate a refresh")
	}

	// The successful sibling writes landed despite the failures.
	if len(api.notes) != 2 {
		t.Fatalf("expected 2 persisted notes, got %d", len(api.notes))
	}
	if _, ok := api.assessments[entities.CategoryPain]; !ok {
		t.Fatal("pain assessment should have been persisted")
	}
}

func TestPersistAssessmentPayload(t *testing.T) {
	api := newFakeRecordsAPI()
	coordinator := NewCoordinator(api, nil)

	sanitized := &entities.SanitizedExtraction{
		Forms: map[entities.AssessmentCategory]map[string]any{
			entities.CategoryPain: {"painsite": "shoulder", "painsevirity": 4},
		},
	}

	if _, err := coordinator.Persist(context.Background(), sanitized, "p-9", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := api.assessments[entities.CategoryPain]
	if payload["patientId"] != "p-9" {
		t.Fatalf("patientId = %v", payload["patientId"])
	}
	if payload["doctorId"] != int64(3) {
		t.Fatalf("doctorId = %v", payload["doctorId"])
	}
	if payload["role"] != "doctor" {
		t.Fatalf("role = %v", payload["role"])
	}
	if payload["painsite"] != "shoulder" {
		t.Fatalf("painsite = %v", payload["painsite"])
	}
	if _, ok := payload["date"]; !ok {
		t.Fatal("payload should carry a date")
	}
}

func TestPersistNoteRequestFields(t *testing.T) {
	api := newFakeRecordsAPI()
	coordinator := NewCoordinator(api, nil)

	sanitized := &entities.SanitizedExtraction{
		SOAP: map[entities.NoteType]string{entities.NoteTypeAssessment: "acute sprain"},
	}

	if _, err := coordinator.Persist(context.Background(), sanitized, "p-2", 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(api.notes))
	}
	req := api.notes[0]
	if req.PatientID != "p-2" || req.DoctorID != 11 || req.Content != "acute sprain" || req.Role != "doctor" {
		t.Fatalf("unexpected note request: %+v", req)
	}
	if api.noteTypes[0] != entities.NoteTypeAssessment {
		t.Fatalf("note type = %s", api.noteTypes[0])
	}
}
