package entities

import (
	"time"
)

// Patient is the patient-identity record. The consultation core treats an
// absent patient as "no active patient" and refuses to record or persist.
type Patient struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Age       int       `json:"age" gorm:"not null"`
	Gender    string    `json:"gender" gorm:"type:varchar(20);not null"`
	Contact   string    `json:"contact" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// Doctor is the doctor-identity record resolved once per save operation.
type Doctor struct {
	ID        int64     `json:"id" gorm:"primary_key;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Specialty string    `json:"specialty" gorm:"type:varchar(100)"`
	IsActive  bool      `json:"is_active" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Doctor) TableName() string {
	return "doctors"
}
