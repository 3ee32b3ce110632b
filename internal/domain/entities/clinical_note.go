package entities

import (
	"time"

	"github.com/google/uuid"
)

// NoteType identifies one of the four SOAP sections
type NoteType string

const (
	NoteTypeSubjective NoteType = "subjective"
	NoteTypeObjective  NoteType = "objective"
	NoteTypeAssessment NoteType = "assessment"
	NoteTypePlan       NoteType = "plan"
)

// NoteTypes lists the four SOAP sections in canonical order
var NoteTypes = []NoteType{NoteTypeSubjective, NoteTypeObjective, NoteTypeAssessment, NoteTypePlan}

// IsValid checks if the note type is one of the four SOAP sections
func (t NoteType) IsValid() bool {
	switch t {
	case NoteTypeSubjective, NoteTypeObjective, NoteTypeAssessment, NoteTypePlan:
		return true
	}
	return false
}

// ClinicalNote is one persisted SOAP note row. Notes of the same type
// accumulate over time per (patient, doctor); they are never overwritten by
// a save cycle.
type ClinicalNote struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PatientID string    `json:"patient_id" gorm:"type:varchar(64);not null;index"`
	DoctorID  int64     `json:"doctor_id" gorm:"not null;index"`
	Type      NoteType  `json:"type" gorm:"type:varchar(20);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:'doctor'"`
	Date      time.Time `json:"date" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ClinicalNote) TableName() string {
	return "clinical_notes"
}

// NewClinicalNote creates a note with a fresh id and the given capture date
func NewClinicalNote(patientID string, doctorID int64, noteType NoteType, content, role string, date time.Time) *ClinicalNote {
	return &ClinicalNote{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Type:      noteType,
		Content:   content,
		Role:      role,
		Date:      date,
	}
}

// NoteRecord is the client-side view of one note as returned by the list
// endpoint: `{id, date, content}` tagged with its type after flattening.
type NoteRecord struct {
	ID      string    `json:"id"`
	Type    NoteType  `json:"type"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}
