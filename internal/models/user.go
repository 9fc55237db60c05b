package models

import (
	"strings"
	"time"
)

// AccountStatus tracks where an account sits in the invitation lifecycle.
type AccountStatus string

const (
	// AccountPending marks an invited account that has not completed setup.
	AccountPending AccountStatus = "pending"
	// AccountActive marks an account with credentials set.
	AccountActive AccountStatus = "active"
)

// User represents a staff account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Email address.
	Password string `gorm:"type:text"`                      // Hashed password, empty until setup.

	Role          Role          `gorm:"type:text;not null;default:'sales'"`   // Permission tier.
	Status        AccountStatus `gorm:"type:text;not null;default:'pending'"` // Invitation lifecycle state.
	IsSuperuser   bool          `gorm:"not null;default:false"`               // Bootstrap admin flag.
	IsActive      bool          `gorm:"not null;default:false"`               // Whether the account can sign in.
	IsPasswordSet bool          `gorm:"not null;default:false"`               // Whether setup completed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// DisplayName returns the human name, falling back to the username.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Username
}

// PublicRole returns the role reported to clients; superusers read as admin.
func (u *User) PublicRole() Role {
	if u.IsSuperuser {
		return RoleAdmin
	}
	return u.Role
}
