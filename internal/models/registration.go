package models

import (
	"time"

	"gorm.io/datatypes"
)

// ExhibitorRegistration captures a public exhibitor sign-up.
type ExhibitorRegistration struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CompanyName   string         `gorm:"type:text;not null"` // Exhibiting company.
	ContactPerson string         `gorm:"type:text;not null"` // Primary contact name.
	Email         string         `gorm:"type:text;not null"` // Contact email.
	Phone         string         `gorm:"type:text"`          // Contact phone.
	Country       string         `gorm:"type:text"`          // Company country.
	BoothSize     string         `gorm:"type:text"`          // Requested booth size.
	Products      datatypes.JSON `gorm:"type:jsonb"`         // Product categories of interest.
	Message       string         `gorm:"type:text"`          // Free-form message.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Submission timestamp.
}

// VisitorRegistration captures a public visitor sign-up.
type VisitorRegistration struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name    string `gorm:"type:text;not null"` // Visitor name.
	Email   string `gorm:"type:text;not null"` // Contact email.
	Phone   string `gorm:"type:text"`          // Contact phone.
	Company string `gorm:"type:text"`          // Visitor company.
	Purpose string `gorm:"type:text"`          // Visit purpose.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Submission timestamp.
}
