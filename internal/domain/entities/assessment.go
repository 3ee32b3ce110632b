package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentCategory identifies one of the seven custom assessment forms
type AssessmentCategory string

const (
	CategoryPain            AssessmentCategory = "pain"
	CategoryHistory         AssessmentCategory = "history"
	CategoryChiefComplaints AssessmentCategory = "chiefcomplaints"
	CategoryExamination     AssessmentCategory = "examination"
	CategoryMotor           AssessmentCategory = "motor"
	CategorySensory         AssessmentCategory = "sensory"
	CategoryPediatric       AssessmentCategory = "pediatric"
)

// AssessmentCategories lists the seven categories in canonical order
var AssessmentCategories = []AssessmentCategory{
	CategoryPain,
	CategoryHistory,
	CategoryChiefComplaints,
	CategoryExamination,
	CategoryMotor,
	CategorySensory,
	CategoryPediatric,
}

// IsValid checks if the category is one of the seven assessment forms
func (c AssessmentCategory) IsValid() bool {
	_, ok := AssessmentFields[c]
	return ok
}

// AssessmentFields fixes the field whitelist per category. Keys not listed
// here are dropped during sanitization; extraction output never grows the
// schema. Field names match the clinical record wire format.
var AssessmentFields = map[AssessmentCategory][]string{
	CategoryPain: {
		"painsite", "painside", "painnature", "painsevirity", "painDiurnal",
		"painAggravating", "painRelieving", "painOnset", "painDuration",
		"painRadiation", "painFrequency",
	},
	CategoryHistory: {
		"presentHistory", "pastHistory", "medicalHistory", "surgicalHistory",
		"familyHistory", "personalHistory", "medications", "allergies",
	},
	CategoryChiefComplaints: {
		"fever", "trauma", "weightloss", "nightpain", "numbness",
		"complaint", "duration", "onset", "progression",
	},
	CategoryExamination: {
		"observation", "palpation", "rom", "specialTests",
		"gait", "posture", "swelling", "tenderness",
	},
	CategoryMotor: {
		"muscleStrength", "muscleTone", "coordination",
		"reflexes", "atrophy", "involuntaryMovements",
	},
	CategorySensory: {
		"lightTouch", "pinprick", "vibration", "proprioception", "temperature",
	},
	CategoryPediatric: {
		"birthHistory", "milestones", "immunization",
		"development", "feeding", "schooling",
	},
}

// ChiefComplaintFlags are the boolean symptom fields of the chiefcomplaints
// category; they are coerced to strict booleans during sanitization.
var ChiefComplaintFlags = map[string]bool{
	"fever":      true,
	"trauma":     true,
	"weightloss": true,
	"nightpain":  true,
	"numbness":   true,
}

// PainSeverityField is the 1-10 integer severity field of the pain category
const PainSeverityField = "painsevirity"

// AssessmentSubmission is one append-only server-side assessment save. Each
// save is an independent row, not an update-in-place.
type AssessmentSubmission struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PatientID string             `json:"patient_id" gorm:"type:varchar(64);not null;index"`
	DoctorID  int64              `json:"doctor_id" gorm:"not null;index"`
	Category  AssessmentCategory `json:"category" gorm:"type:varchar(32);not null;index"`
	Fields    datatypes.JSON     `json:"fields" gorm:"type:jsonb;not null;default:'{}'"`
	Role      string             `json:"role" gorm:"type:varchar(20);not null;default:'doctor'"`
	Date      time.Time          `json:"date" gorm:"not null;index"`
	CreatedAt time.Time          `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AssessmentSubmission) TableName() string {
	return "assessment_submissions"
}
