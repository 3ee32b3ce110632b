package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// DoctorRepository handles doctor identity data operations
type DoctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository creates a new doctor repository
func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// CreateDoctor creates a new doctor
func (r *DoctorRepository) CreateDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if doctor == nil {
		return errors.New("doctor cannot be nil")
	}
	return r.db.WithContext(ctx).Create(doctor).Error
}

// GetDoctorByID retrieves an active doctor by ID. Returns nil without
// error when the doctor does not exist or is inactive.
func (r *DoctorRepository) GetDoctorByID(ctx context.Context, id int64) (*entities.Doctor, error) {
	var doctor entities.Doctor
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}
