package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/physiohub/clinic-assistant/internal/adapter/dto/records"
	"github.com/physiohub/clinic-assistant/internal/adapter/repository"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// PatientCacheInvalidator drops a cached patient record after a write so
// the next lookup sees the fresh row
type PatientCacheInvalidator interface {
	Invalidate(ctx context.Context, patientID string)
}

// Records serves the clinical records API: patient lookup and update, the
// per-type SOAP CRUD sub-paths and the per-category assessment create
// path. The response bodies are the raw wire shapes the consultation core
// consumes, not the enveloped format of the consultation endpoints.
type Records struct {
	patients    *repository.PatientRepository
	notes       *repository.ClinicalNoteRepository
	assessments *repository.AssessmentRepository
	invalidator PatientCacheInvalidator
	logger      *zap.Logger
}

// NewRecords creates the records handler
func NewRecords(
	patients *repository.PatientRepository,
	notes *repository.ClinicalNoteRepository,
	assessments *repository.AssessmentRepository,
	invalidator PatientCacheInvalidator,
	logger *zap.Logger,
) *Records {
	return &Records{
		patients:    patients,
		notes:       notes,
		assessments: assessments,
		invalidator: invalidator,
		logger:      logger,
	}
}

// GetPatient handles GET /v1/patients/:id
func (h *Records) GetPatient(c echo.Context) error {
	patient, err := h.patients.GetPatientByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load patient"})
	}
	if patient == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "patient not found"})
	}
	return c.JSON(http.StatusOK, patient)
}

// UpdatePatient handles PUT /v1/patients/:id. The cached directory entry
// is invalidated so the consultation core picks up the new record on its
// next identity lookup.
func (h *Records) UpdatePatient(c echo.Context) error {
	id := c.Param("id")

	var req records.UpdatePatientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	patient, err := h.patients.GetPatientByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load patient"})
	}
	if patient == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "patient not found"})
	}

	patient.Name = req.Name
	patient.Age = req.Age
	patient.Gender = req.Gender
	patient.Contact = req.Contact

	if err := h.patients.UpdatePatient(c.Request().Context(), patient); err != nil {
		if h.logger != nil {
			h.logger.Error("Failed to update patient", zap.String("id", id), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update patient"})
	}

	if h.invalidator != nil {
		h.invalidator.Invalidate(c.Request().Context(), id)
	}
	return c.JSON(http.StatusOK, patient)
}

// CreateNote handles POST /v1/soap/:type
func (h *Records) CreateNote(c echo.Context) error {
	var req records.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Type = entities.NoteType(c.Param("type"))
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	noteType := req.Type

	role := req.Role
	if role == "" {
		role = "doctor"
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	note := entities.NewClinicalNote(req.PatientID, req.DoctorID, noteType, req.Content, role, date)
	if err := h.notes.CreateNote(c.Request().Context(), note); err != nil {
		if h.logger != nil {
			h.logger.Error("Failed to create note", zap.String("type", string(noteType)), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create note"})
	}

	return c.JSON(http.StatusCreated, records.CreateResponse{ID: note.ID.String()})
}

// ListNotes handles GET /v1/soap/:type/:patientId
func (h *Records) ListNotes(c echo.Context) error {
	noteType := entities.NoteType(c.Param("type"))
	if !noteType.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown note type"})
	}

	notes, err := h.notes.ListNotesByPatient(c.Request().Context(), noteType, c.Param("patientId"))
	if err != nil {
		if h.logger != nil {
			h.logger.Error("Failed to list notes", zap.String("type", string(noteType)), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list notes"})
	}

	out := make([]records.NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, records.NoteResponse{
			ID:      note.ID.String(),
			Date:    note.Date,
			Content: note.Content,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateNote handles PUT /v1/soap/:type/:id
func (h *Records) UpdateNote(c echo.Context) error {
	noteType := entities.NoteType(c.Param("type"))
	if !noteType.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown note type"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid note id"})
	}

	var req records.UpdateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.notes.UpdateNoteContent(c.Request().Context(), id, req.Content, req.Date); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "note not found"})
		}
		if h.logger != nil {
			h.logger.Error("Failed to update note", zap.String("id", id.String()), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update note"})
	}
	return c.JSON(http.StatusOK, records.CreateResponse{ID: id.String()})
}

// DeleteNote handles DELETE /v1/soap/:type/:id
func (h *Records) DeleteNote(c echo.Context) error {
	noteType := entities.NoteType(c.Param("type"))
	if !noteType.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown note type"})
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid note id"})
	}

	if err := h.notes.DeleteNote(c.Request().Context(), id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "note not found"})
		}
		if h.logger != nil {
			h.logger.Error("Failed to delete note", zap.String("id", id.String()), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete note"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateAssessment handles POST /v1/assessments/:category. The body mixes
// routing fields (patientId, doctorId, date, role) with the category's
// clinical fields; only whitelisted clinical fields are stored.
func (h *Records) CreateAssessment(c echo.Context) error {
	category := entities.AssessmentCategory(c.Param("category"))

	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	patientID, _ := body["patientId"].(string)
	if err := c.Validate(&records.AssessmentTarget{Category: category, PatientID: patientID}); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	doctorID := int64(0)
	if raw, ok := body["doctorId"].(float64); ok {
		doctorID = int64(raw)
	}
	role, _ := body["role"].(string)
	if role == "" {
		role = "doctor"
	}
	date := time.Now()
	if raw, ok := body["date"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			date = parsed
		}
	}

	fields := make(map[string]any)
	for _, key := range entities.AssessmentFields[category] {
		if value, ok := body[key]; ok && value != nil {
			fields[key] = value
		}
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to encode fields"})
	}

	submission := &entities.AssessmentSubmission{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Category:  category,
		Fields:    datatypes.JSON(encoded),
		Role:      role,
		Date:      date,
	}
	if err := h.assessments.CreateSubmission(c.Request().Context(), submission); err != nil {
		if h.logger != nil {
			h.logger.Error("Failed to create assessment submission",
				zap.String("category", string(category)), zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create submission"})
	}

	return c.JSON(http.StatusCreated, records.CreateResponse{ID: submission.ID.String()})
}
