package db

import (
	"errors"
	"fmt"

	"github.com/expodesk/expodesk/internal/models"
	"gorm.io/gorm"
)

// Migrate runs auto-migration, seeds the settings singleton, and applies
// indexes for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.PasswordSetupToken{},
		&models.SystemSettings{},
		&models.ExhibitorRegistration{},
		&models.VisitorRegistration{},
		&models.Category{},
		&models.Event{},
		&models.GalleryImage{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureSystemSettings(conn); errSeed != nil {
		return errSeed
	}

	// ddl defines an index statement to apply.
	type ddl struct {
		name string // Human-readable name for error reporting.
		sql  string // SQL to execute.
	}
	ddls := []ddl{
		{
			name: "idx_setup_tokens_user_id",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_setup_tokens_user_id
				ON password_setup_tokens (user_id)
			`,
		},
		{
			name: "idx_users_role_created_at",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_users_role_created_at
				ON users (role, created_at DESC)
			`,
		},
		{
			name: "idx_gallery_images_section_order",
			sql: `
				CREATE INDEX IF NOT EXISTS idx_gallery_images_section_order
				ON gallery_images (page, section, display_order, id)
			`,
		},
	}
	for _, item := range ddls {
		if errDDL := conn.Exec(item.sql).Error; errDDL != nil {
			return fmt.Errorf("db: create index %s: %w", item.name, errDDL)
		}
	}

	return nil
}

// ensureSystemSettings seeds the singleton settings row when absent.
func ensureSystemSettings(conn *gorm.DB) error {
	var existing models.SystemSettings
	errFind := conn.First(&existing, 1).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: query system settings: %w", errFind)
	}

	row := models.SystemSettings{ID: 1, UnderMaintenance: false}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("db: seed system settings: %w", errCreate)
	}
	return nil
}

// GetSystemSettings returns the singleton settings row, creating it if the
// table was wiped out from under us.
func GetSystemSettings(conn *gorm.DB) (*models.SystemSettings, error) {
	var row models.SystemSettings
	errFind := conn.First(&row, 1).Error
	if errFind == nil {
		return &row, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db: query system settings: %w", errFind)
	}
	if errSeed := ensureSystemSettings(conn); errSeed != nil {
		return nil, errSeed
	}
	if errRetry := conn.First(&row, 1).Error; errRetry != nil {
		return nil, fmt.Errorf("db: query system settings: %w", errRetry)
	}
	return &row, nil
}
