package models

import "time"

// Category is a product/exhibit category shown on the public site.
type Category struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null"` // Category name.
	Description string `gorm:"type:text"`          // Optional description.
	Image       string `gorm:"type:text"`          // Stored image URL.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Event is a scheduled exhibition event.
type Event struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title       string     `gorm:"type:text;not null"`      // Event title.
	Description string     `gorm:"type:text"`               // Event description.
	Venue       string     `gorm:"type:text"`               // Venue name.
	StartDate   time.Time  `gorm:"type:timestamptz;index"`  // Event start.
	EndDate     *time.Time `gorm:"type:timestamptz"`        // Event end, optional.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// GalleryImage is a positioned image within a page section.
type GalleryImage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Page         string `gorm:"type:text;not null;index:idx_gallery_page_section"` // Owning page slug.
	Section      string `gorm:"type:text;not null;index:idx_gallery_page_section"` // Section slug within the page.
	Image        string `gorm:"type:text;not null"`                                // Stored image URL.
	DisplayOrder int    `gorm:"not null;default:0"`                                // Position within the section.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Upload timestamp.
}
