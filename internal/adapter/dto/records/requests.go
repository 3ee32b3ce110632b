// Package records holds the wire shapes of the clinical records API.
package records

import (
	"time"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// CreateNoteRequest is the POST /soap/{type} body. Type travels in the
// path, not the body; the handler fills it in before validation.
type CreateNoteRequest struct {
	Type      entities.NoteType `json:"-" validate:"notetype"`
	PatientID string            `json:"patientId" validate:"required"`
	Content   string            `json:"content" validate:"required"`
	DoctorID  int64             `json:"doctorId" validate:"required"`
	Date      time.Time         `json:"date"`
	Role      string            `json:"role"`
}

// AssessmentTarget carries the routing identity of a POST
// /assessments/{category} call, separated from the free-form clinical
// fields of the body.
type AssessmentTarget struct {
	Category  entities.AssessmentCategory `validate:"assessmentcategory"`
	PatientID string                      `validate:"required"`
}

// UpdatePatientRequest is the PUT /patients/{id} body
type UpdatePatientRequest struct {
	Name    string `json:"name" validate:"required"`
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	Contact string `json:"contact"`
}

// UpdateNoteRequest is the PUT /soap/{type}/{id} body. Note the patientID
// key casing differs from the create body; both are part of the contract.
type UpdateNoteRequest struct {
	PatientID string    `json:"patientID"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content" validate:"required"`
}

// NoteResponse is one element of the GET /soap/{type}/{patientId} list
type NoteResponse struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

// CreateResponse carries the id of a newly created row
type CreateResponse struct {
	ID string `json:"id"`
}
