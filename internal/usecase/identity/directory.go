// Package identity resolves patient and doctor identity for the
// consultation core. Lookups hit the directory on every operation; only
// the patient record itself is cached, never the decision derived from it.
package identity

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/physiohub/clinic-assistant/internal/adapter/repository"
	"github.com/physiohub/clinic-assistant/internal/domain/entities"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/cache"
)

const patientKeyPrefix = "patient:"

// PatientSource is the backing read for patient records. A nil patient
// with a nil error means the patient is unknown.
type PatientSource interface {
	GetPatientByID(ctx context.Context, patientID string) (*entities.Patient, error)
}

// PatientDirectory resolves patients through a read-through cache over the
// patient repository. Cache failures degrade to a direct read.
type PatientDirectory struct {
	repo   PatientSource
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewPatientDirectory creates a patient directory
func NewPatientDirectory(repo PatientSource, store cache.Store, ttl time.Duration, logger *zap.Logger) *PatientDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PatientDirectory{repo: repo, store: store, ttl: ttl, logger: logger}
}

// Lookup resolves a patient by ID. Returns nil without error when the
// patient is unknown; absence is never cached.
func (d *PatientDirectory) Lookup(ctx context.Context, patientID string) (*entities.Patient, error) {
	key := patientKeyPrefix + patientID

	if d.store != nil {
		cached, found, err := d.store.Get(ctx, key)
		if err != nil && d.logger != nil {
			d.logger.Warn("⚠️ Patient cache read failed", zap.String("patient_id", patientID), zap.Error(err))
		}
		if found {
			var patient entities.Patient
			if err := json.Unmarshal([]byte(cached), &patient); err == nil {
				return &patient, nil
			}
			// Corrupt entry, fall through to the repository.
			_ = d.store.Delete(ctx, key)
		}
	}

	patient, err := d.repo.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, nil
	}

	if d.store != nil {
		if encoded, err := json.Marshal(patient); err == nil {
			if err := d.store.Set(ctx, key, string(encoded), d.ttl); err != nil && d.logger != nil {
				d.logger.Warn("⚠️ Patient cache write failed", zap.String("patient_id", patientID), zap.Error(err))
			}
		}
	}
	return patient, nil
}

// Invalidate drops the cached record for a patient
func (d *PatientDirectory) Invalidate(ctx context.Context, patientID string) {
	if d.store != nil {
		_ = d.store.Delete(ctx, patientKeyPrefix+patientID)
	}
}

// DoctorDirectory resolves doctors straight from the repository. Doctor
// identity is re-read per operation and deliberately not cached.
type DoctorDirectory struct {
	repo *repository.DoctorRepository
}

// NewDoctorDirectory creates a doctor directory
func NewDoctorDirectory(repo *repository.DoctorRepository) *DoctorDirectory {
	return &DoctorDirectory{repo: repo}
}

// Resolve returns the active doctor, or nil without error when unknown
func (d *DoctorDirectory) Resolve(ctx context.Context, doctorID int64) (*entities.Doctor, error) {
	return d.repo.GetDoctorByID(ctx, doctorID)
}
