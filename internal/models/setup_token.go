package models

import "time"

// PasswordSetupToken links a pending or resetting account to its emailed
// setup link. At most one live token exists per user; issuing a new one
// deletes the old row.
type PasswordSetupToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Token  string `gorm:"type:text;not null;uniqueIndex"` // Opaque server-generated token.
	UserID uint64 `gorm:"not null;index"`                 // Owning user.
	User   *User  `gorm:"foreignKey:UserID"`              // Owning user record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issue timestamp.
}

// ExpiresAt returns the end of the token's fixed 24-hour validity window.
func (t *PasswordSetupToken) ExpiresAt() time.Time {
	return t.CreatedAt.Add(SetupTokenLifetime)
}

// SetupTokenLifetime is the absolute validity window of a setup token.
const SetupTokenLifetime = 24 * time.Hour
