package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the clinical custom
// validations registered.
func New() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("notetype", func(fl validator.FieldLevel) bool {
		return entities.NoteType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("assessmentcategory", func(fl validator.FieldLevel) bool {
		return entities.AssessmentCategory(fl.Field().String()).IsValid()
	})

	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
