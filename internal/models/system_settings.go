package models

import "time"

// SystemSettings is the singleton maintenance-mode record. Exactly one row
// exists; migration seeds it and readers go through a get-or-create accessor.
type SystemSettings struct {
	ID uint64 `gorm:"primaryKey"` // Always 1.

	UnderMaintenance bool       `gorm:"not null;default:false"` // Global maintenance flag.
	DateOfOnline     *time.Time `gorm:"type:timestamptz"`       // Planned return date, only meaningful while under maintenance.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
