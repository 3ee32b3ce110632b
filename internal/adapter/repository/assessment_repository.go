package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// AssessmentRepository handles assessment submission data operations.
// Submissions are append-only: every save is a fresh row.
type AssessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// CreateSubmission appends a new assessment submission
func (r *AssessmentRepository) CreateSubmission(ctx context.Context, submission *entities.AssessmentSubmission) error {
	if submission == nil {
		return errors.New("submission cannot be nil")
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetSubmissionByID retrieves a submission by ID
func (r *AssessmentRepository) GetSubmissionByID(ctx context.Context, id uuid.UUID) (*entities.AssessmentSubmission, error) {
	var submission entities.AssessmentSubmission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// ListSubmissionsByPatient retrieves all submissions of one category for a
// patient, newest first.
func (r *AssessmentRepository) ListSubmissionsByPatient(ctx context.Context, category entities.AssessmentCategory, patientID string) ([]entities.AssessmentSubmission, error) {
	var submissions []entities.AssessmentSubmission
	err := r.db.WithContext(ctx).
		Where("category = ? AND patient_id = ?", category, patientID).
		Order("date DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
