package consultation

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// FormStore keeps the per-patient assessment form state between capture
// cycles. Forms are seeded empty when a patient is first selected and
// accumulate extracted values across consultations; applying the same
// extraction twice yields the same state.
type FormStore struct {
	coordinator *Coordinator
	logger      *zap.Logger

	mu    sync.Mutex
	forms map[string]map[entities.AssessmentCategory]map[string]any
}

// NewFormStore creates an assessment form store
func NewFormStore(coordinator *Coordinator, logger *zap.Logger) *FormStore {
	return &FormStore{
		coordinator: coordinator,
		logger:      logger,
		forms:       make(map[string]map[entities.AssessmentCategory]map[string]any),
	}
}

// EnsureSeeded creates empty forms for every category if the patient has
// none yet. Existing state is left untouched.
func (s *FormStore) EnsureSeeded(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[patientID]; ok {
		return
	}
	seeded := make(map[entities.AssessmentCategory]map[string]any, len(entities.AssessmentFields))
	for category := range entities.AssessmentFields {
		seeded[category] = make(map[string]any)
	}
	s.forms[patientID] = seeded
}

// Reset wipes the patient's forms back to the seeded empty state
func (s *FormStore) Reset(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seeded := make(map[entities.AssessmentCategory]map[string]any, len(entities.AssessmentFields))
	for category := range entities.AssessmentFields {
		seeded[category] = make(map[string]any)
	}
	s.forms[patientID] = seeded
}

// ApplyExtraction shallow-merges sanitized fields for one category into
// the patient's form. Keys not present in the extraction keep their
// current values; the merge is idempotent.
func (s *FormStore) ApplyExtraction(patientID string, category entities.AssessmentCategory, fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.forms[patientID]
	if !ok {
		patient = make(map[entities.AssessmentCategory]map[string]any)
		s.forms[patientID] = patient
	}
	form, ok := patient[category]
	if !ok {
		form = make(map[string]any)
		patient[category] = form
	}
	for key, value := range fields {
		form[key] = value
	}
}

// Snapshot returns a copy of the patient's current form state
func (s *FormStore) Snapshot(patientID string) map[entities.AssessmentCategory]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	patient, ok := s.forms[patientID]
	if !ok {
		return nil
	}
	out := make(map[entities.AssessmentCategory]map[string]any, len(patient))
	for category, form := range patient {
		copied := make(map[string]any, len(form))
		for key, value := range form {
			copied[key] = value
		}
		out[category] = copied
	}
	return out
}

// SaveAll submits every category that holds at least one value as a fresh
// assessment submission via the settle-all coordinator. Categories still
// empty are skipped; with nothing filled in anywhere the coordinator
// returns NothingToSave.
func (s *FormStore) SaveAll(ctx context.Context, patientID string, doctorID int64) (*entities.PersistenceReport, error) {
	current := s.Snapshot(patientID)

	filled := make(map[entities.AssessmentCategory]map[string]any)
	for category, form := range current {
		if len(form) > 0 {
			filled[category] = form
		}
	}

	if s.logger != nil {
		s.logger.Info("📋 Saving assessment forms",
			zap.String("patient_id", patientID),
			zap.Int("categories", len(filled)))
	}
	return s.coordinator.Persist(ctx, &entities.SanitizedExtraction{Forms: filled}, patientID, doctorID)
}
