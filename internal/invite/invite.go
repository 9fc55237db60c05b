// Package invite issues and validates the single-use setup tokens that tie a
// pending account to the email that must complete password setup.
package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/security"
	"gorm.io/gorm"
)

// Validation failures surfaced by Validate.
var (
	// ErrTokenNotFound indicates no token row matches the supplied string.
	ErrTokenNotFound = errors.New("invite: token not found")
	// ErrTokenExpired indicates the token outlived its 24-hour window.
	ErrTokenExpired = errors.New("invite: token expired")
	// ErrEmailMismatch indicates the caller email differs from the token owner's.
	ErrEmailMismatch = errors.New("invite: email mismatch")
)

// Issuer creates and validates setup tokens against the database.
type Issuer struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIssuer constructs an Issuer.
func NewIssuer(db *gorm.DB) *Issuer {
	return &Issuer{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the issuer clock. Test hook.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue deletes any existing token for the user and creates a fresh one,
// keeping the at-most-one-live-token invariant.
func (i *Issuer) Issue(ctx context.Context, user *models.User) (string, error) {
	raw, errGen := security.GenerateRandomString(32)
	if errGen != nil {
		return "", errGen
	}

	errTx := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDel := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordSetupToken{}).Error; errDel != nil {
			return errDel
		}
		row := models.PasswordSetupToken{
			Token:     raw,
			UserID:    user.ID,
			CreatedAt: i.now(),
		}
		return tx.Create(&row).Error
	})
	if errTx != nil {
		return "", fmt.Errorf("invite: issue token: %w", errTx)
	}
	return raw, nil
}

// Validate looks up the token and checks expiry and email ownership. The
// email check is skipped when email is empty (used by reset links where the
// email is implied by the token itself).
func (i *Issuer) Validate(ctx context.Context, token, email string) (*models.User, error) {
	var row models.PasswordSetupToken
	errFind := i.db.WithContext(ctx).Preload("User").Where("token = ?", token).First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("invite: query token: %w", errFind)
	}
	if row.User == nil {
		return nil, ErrTokenNotFound
	}
	if email != "" && row.User.Email != email {
		return nil, ErrEmailMismatch
	}
	if i.now().After(row.ExpiresAt()) {
		return nil, ErrTokenExpired
	}
	return row.User, nil
}

// Consume deletes the token row. Called exactly once, as the final step of
// password setup.
func (i *Issuer) Consume(ctx context.Context, token string) error {
	res := i.db.WithContext(ctx).Where("token = ?", token).Delete(&models.PasswordSetupToken{})
	if res.Error != nil {
		return fmt.Errorf("invite: consume token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
