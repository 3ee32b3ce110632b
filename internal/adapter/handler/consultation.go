package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/errors"
	dto "github.com/physiohub/clinic-assistant/internal/adapter/dto/consultation"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
	"github.com/physiohub/clinic-assistant/internal/usecase/consultation"
)

// Consultation serves the capture pipeline endpoints: recording lifecycle,
// note history, note edit/delete and assessment form saves. The acting
// doctor travels in the X-Doctor-ID header and is resolved per operation.
type Consultation struct {
	service *consultation.Service
	logger  *zap.Logger
}

// NewConsultation creates the consultation handler
func NewConsultation(service *consultation.Service, logger *zap.Logger) *Consultation {
	return &Consultation{service: service, logger: logger}
}

// StartRecording handles POST /v1/consultations/:patientId/recording/start
func (h *Consultation) StartRecording(c echo.Context) error {
	doctorID, err := doctorIDFromHeader(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.StartRecordingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	sessionID, err := h.service.StartRecording(c.Request().Context(), c.Param("patientId"), doctorID, req.Encoding)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.StartRecordingResponse{SessionID: sessionID})
}

// AppendChunk handles POST /v1/consultations/:patientId/recording/chunks.
// The body is the raw audio chunk.
func (h *Consultation) AppendChunk(c echo.Context) error {
	chunk, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if err := h.service.AppendAudio(c.Param("patientId"), chunk); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]int{"bytes": len(chunk)})
}

// StopRecording handles POST /v1/consultations/:patientId/recording/stop.
// Runs the full pipeline and returns the transcript, the settled
// persistence report and the refreshed history.
func (h *Consultation) StopRecording(c echo.Context) error {
	doctorID, err := doctorIDFromHeader(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.service.StopAndProcess(c.Request().Context(), c.Param("patientId"), doctorID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, result)
}

// AbortRecording handles POST /v1/consultations/:patientId/recording/abort
func (h *Consultation) AbortRecording(c echo.Context) error {
	h.service.AbortRecording(c.Param("patientId"))
	return HandleSuccess(h.logger, c, nil)
}

// GetArtifacts handles GET /v1/consultations/:patientId/artifacts. Lists
// the archived audio clips and transcripts with presigned download URLs.
func (h *Consultation) GetArtifacts(c echo.Context) error {
	artifacts, err := h.service.Artifacts(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, artifacts)
}

// GetHistory handles GET /v1/consultations/:patientId/history
func (h *Consultation) GetHistory(c echo.Context) error {
	notes, err := h.service.History(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notes)
}

// EditNote handles PUT /v1/consultations/:patientId/notes/:type/:id
func (h *Consultation) EditNote(c echo.Context) error {
	noteType := entities.NoteType(c.Param("type"))
	if !noteType.IsValid() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("unknown note type"))
	}

	var req dto.EditNoteRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrValidationFailed(err))
	}

	notes, err := h.service.EditNote(c.Request().Context(), c.Param("patientId"), noteType, c.Param("id"), req.Content, req.Date)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notes)
}

// DeleteNote handles DELETE /v1/consultations/:patientId/notes/:type/:id
func (h *Consultation) DeleteNote(c echo.Context) error {
	noteType := entities.NoteType(c.Param("type"))
	if !noteType.IsValid() {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("unknown note type"))
	}

	notes, err := h.service.DeleteNote(c.Request().Context(), c.Param("patientId"), noteType, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, notes)
}

// GetForms handles GET /v1/consultations/:patientId/forms
func (h *Consultation) GetForms(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.service.Forms(c.Param("patientId")))
}

// SaveForms handles POST /v1/consultations/:patientId/forms/save
func (h *Consultation) SaveForms(c echo.Context) error {
	doctorID, err := doctorIDFromHeader(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.service.SaveForms(c.Request().Context(), c.Param("patientId"), doctorID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}
