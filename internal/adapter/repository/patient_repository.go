package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// PatientRepository handles patient identity data operations
type PatientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// CreatePatient creates a new patient
func (r *PatientRepository) CreatePatient(ctx context.Context, patient *entities.Patient) error {
	if patient == nil {
		return errors.New("patient cannot be nil")
	}
	return r.db.WithContext(ctx).Create(patient).Error
}

// GetPatientByID retrieves a patient by ID. Returns nil without error when
// the patient does not exist.
func (r *PatientRepository) GetPatientByID(ctx context.Context, id string) (*entities.Patient, error) {
	var patient entities.Patient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// UpdatePatient updates a patient
func (r *PatientRepository) UpdatePatient(ctx context.Context, patient *entities.Patient) error {
	if patient == nil {
		return errors.New("patient cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Patient{}).
		Where("id = ?", patient.ID).
		Save(patient).Error
}
