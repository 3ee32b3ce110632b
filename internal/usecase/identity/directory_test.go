package identity

import (
	"context"
	"testing"
	"time"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/cache"
)

type fakePatientSource struct {
	patients map[string]*entities.Patient
	reads    int
}

func (f *fakePatientSource) GetPatientByID(_ context.Context, patientID string) (*entities.Patient, error) {
	f.reads++
	return f.patients[patientID], nil
}

func TestLookupCachesPatientRecord(t *testing.T) {
	source := &fakePatientSource{patients: map[string]*entities.Patient{
		"p-1": {ID: "p-1", Name: "Jordan Lee"},
	}}
	directory := NewPatientDirectory(source, cache.NewMemoryStore(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		patient, err := directory.Lookup(ctx, "p-1")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if patient == nil || patient.Name != "Jordan Lee" {
			t.Fatalf("unexpected patient: %+v", patient)
		}
	}
	if source.reads != 1 {
		t.Fatalf("expected 1 repository read, got %d", source.reads)
	}
}

func TestLookupNeverCachesAbsence(t *testing.T) {
	source := &fakePatientSource{patients: map[string]*entities.Patient{}}
	directory := NewPatientDirectory(source, cache.NewMemoryStore(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		patient, err := directory.Lookup(ctx, "missing")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if patient != nil {
			t.Fatalf("expected nil patient, got %+v", patient)
		}
	}
	if source.reads != 2 {
		t.Fatalf("absence must not be cached, got %d reads", source.reads)
	}
}

func TestInvalidateForcesFreshRead(t *testing.T) {
	source := &fakePatientSource{patients: map[string]*entities.Patient{
		"p-1": {ID: "p-1", Name: "Jordan Lee"},
	}}
	directory := NewPatientDirectory(source, cache.NewMemoryStore(), time.Minute, nil)
	ctx := context.Background()

	if _, err := directory.Lookup(ctx, "p-1"); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	source.patients["p-1"].Name = "Jordan Lee-Park"
	directory.Invalidate(ctx, "p-1")

	patient, err := directory.Lookup(ctx, "p-1")
	if err != nil {
		t.Fatalf("lookup after invalidate: %v", err)
	}
	if patient.Name != "Jordan Lee-Park" {
		t.Fatalf("stale record served after invalidate: %+v", patient)
	}
	if source.reads != 2 {
		t.Fatalf("expected 2 repository reads, got %d", source.reads)
	}
}
