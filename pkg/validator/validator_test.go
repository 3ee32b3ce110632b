package validator

import (
	"testing"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

type noteTarget struct {
	Type entities.NoteType `validate:"notetype"`
}

type assessmentTarget struct {
	Category entities.AssessmentCategory `validate:"assessmentcategory"`
}

func TestNoteTypeValidation(t *testing.T) {
	v := New()

	for _, noteType := range entities.NoteTypes {
		if err := v.Validate(&noteTarget{Type: noteType}); err != nil {
			t.Fatalf("%s should validate: %v", noteType, err)
		}
	}
	if err := v.Validate(&noteTarget{Type: "diagnosis"}); err == nil {
		t.Fatal("unknown note type should fail validation")
	}
	if err := v.Validate(&noteTarget{}); err == nil {
		t.Fatal("empty note type should fail validation")
	}
}

func TestAssessmentCategoryValidation(t *testing.T) {
	v := New()

	for category := range entities.AssessmentFields {
		if err := v.Validate(&assessmentTarget{Category: category}); err != nil {
			t.Fatalf("%s should validate: %v", category, err)
		}
	}
	if err := v.Validate(&assessmentTarget{Category: "vitals"}); err == nil {
		t.Fatal("unknown category should fail validation")
	}
}
