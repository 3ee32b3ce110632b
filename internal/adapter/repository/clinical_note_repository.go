package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// ClinicalNoteRepository handles SOAP note data operations
type ClinicalNoteRepository struct {
	db *gorm.DB
}

// NewClinicalNoteRepository creates a new clinical note repository
func NewClinicalNoteRepository(db *gorm.DB) *ClinicalNoteRepository {
	return &ClinicalNoteRepository{db: db}
}

// CreateNote creates a new SOAP note row. Notes accumulate; a create never
// replaces an earlier note of the same type.
func (r *ClinicalNoteRepository) CreateNote(ctx context.Context, note *entities.ClinicalNote) error {
	if note == nil {
		return errors.New("note cannot be nil")
	}
	return r.db.WithContext(ctx).Create(note).Error
}

// GetNoteByID retrieves a note by ID
func (r *ClinicalNoteRepository) GetNoteByID(ctx context.Context, id uuid.UUID) (*entities.ClinicalNote, error) {
	var note entities.ClinicalNote
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

// ListNotesByPatient retrieves all notes of one type for a patient, newest
// first.
func (r *ClinicalNoteRepository) ListNotesByPatient(ctx context.Context, noteType entities.NoteType, patientID string) ([]entities.ClinicalNote, error) {
	var notes []entities.ClinicalNote
	err := r.db.WithContext(ctx).
		Where("type = ? AND patient_id = ?", noteType, patientID).
		Order("date DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNoteContent updates the content and date of one note
func (r *ClinicalNoteRepository) UpdateNoteContent(ctx context.Context, id uuid.UUID, content string, date time.Time) error {
	updates := map[string]interface{}{"content": content}
	if !date.IsZero() {
		updates["date"] = date
	}
	result := r.db.WithContext(ctx).
		Model(&entities.ClinicalNote{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteNote deletes a note by ID
func (r *ClinicalNoteRepository) DeleteNote(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entities.ClinicalNote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
