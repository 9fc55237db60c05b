// Package auth orchestrates the invitation state machine: an admin-invited
// account moves pending → (OTP issued) → active through a 24h setup token and
// a 5-minute one-time code, and active accounts obtain session credentials
// through ordinary login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expodesk/expodesk/internal/invite"
	"github.com/expodesk/expodesk/internal/mail"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/otp"
	"github.com/expodesk/expodesk/internal/security"
	"github.com/expodesk/expodesk/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Domain failures surfaced to the HTTP boundary.
var (
	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("auth: forbidden")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrUsernameTaken indicates the desired username belongs to another user.
	ErrUsernameTaken = errors.New("auth: username already taken")
	// ErrInvalidRole indicates a role outside the invitable set.
	ErrInvalidRole = errors.New("auth: invalid role")
	// ErrUnauthorized indicates bad credentials or an unset password.
	ErrUnauthorized = errors.New("auth: invalid credentials")
	// ErrNotPending indicates a setup attempt against a non-pending account.
	ErrNotPending = errors.New("auth: account is not pending setup")
)

// Service wires the credential store, token issuer, OTP service, and mail
// sender into the auth state machine.
type Service struct {
	db          *gorm.DB
	invites     *invite.Issuer
	codes       *otp.Service
	sender      mail.Sender
	frontendURL string
}

// NewService constructs a Service.
func NewService(db *gorm.DB, invites *invite.Issuer, codes *otp.Service, sender mail.Sender, frontendURL string) *Service {
	return &Service{
		db:          db,
		invites:     invites,
		codes:       codes,
		sender:      sender,
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
	}
}

// Invites exposes the invitation issuer for boundary validation.
func (s *Service) Invites() *invite.Issuer { return s.invites }

// Codes exposes the OTP service for boundary validation.
func (s *Service) Codes() *otp.Service { return s.codes }

// CreateTeamMember creates a pending manager/sales account and emails the
// setup link. Admin-only.
func (s *Service) CreateTeamMember(ctx context.Context, caller *models.User, name, email, roleRaw string) (*models.User, error) {
	if !caller.CanManageTeam() {
		return nil, ErrForbidden
	}

	role, ok := models.ParseRole(roleRaw)
	if !ok || !role.IsTeamRole() {
		return nil, ErrInvalidRole
	}

	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; errCount != nil {
		return nil, fmt.Errorf("auth: check email: %w", errCount)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	placeholder, errGen := security.GenerateRandomString(4)
	if errGen != nil {
		return nil, errGen
	}
	user := models.User{
		Username: "pending_" + placeholder,
		Name:     name,
		Email:    email,
		Role:     role,
		Status:   models.AccountPending,
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		return nil, fmt.Errorf("auth: create team member: %w", errCreate)
	}

	token, errIssue := s.invites.Issue(ctx, &user)
	if errIssue != nil {
		return nil, errIssue
	}

	link := s.frontendURL + "/create-password?token=" + token
	s.notify(email, "Set Your Password", fmt.Sprintf(
		"Hello %s,\nUse this link to set your password:\n%s\nThis link expires in 24 hours.",
		name, link,
	))
	return &user, nil
}

// SendOTP issues a one-time code for an email, preconditioned on a live setup
// token owned by that email.
func (s *Service) SendOTP(ctx context.Context, email, token string) error {
	if _, errValidate := s.invites.Validate(ctx, token, email); errValidate != nil {
		return errValidate
	}
	code, errRequest := s.codes.Request(ctx, email)
	if errRequest != nil {
		return errRequest
	}
	s.notify(email, "Your OTP Code", fmt.Sprintf("Your OTP is %s. It expires in 5 minutes.", code))
	return nil
}

// SetupParams carries the inputs for completing password setup.
type SetupParams struct {
	Email    string
	OTP      string
	Password string
	Token    string
	Username string
}

// CompleteSetup finishes the invitation or reset flow: re-verifies the OTP
// and token, applies the username and password, and consumes both
// credentials. A second call with the same token fails with NotFound.
func (s *Service) CompleteSetup(ctx context.Context, params SetupParams) (*models.User, error) {
	if errOTP := s.codes.Verify(ctx, params.Email, params.OTP); errOTP != nil {
		return nil, errOTP
	}

	user, errToken := s.invites.Validate(ctx, params.Token, params.Email)
	if errToken != nil {
		return nil, errToken
	}

	// Invitations complete a pending account; resets re-run setup on an
	// active one. Any other combination is an inconsistent transition.
	switch user.Status {
	case models.AccountPending:
		if user.IsPasswordSet {
			return nil, ErrNotPending
		}
	case models.AccountActive:
		if !user.IsPasswordSet {
			return nil, ErrNotPending
		}
	default:
		return nil, ErrNotPending
	}

	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", params.Username, user.ID).
		Count(&count).Error; errCount != nil {
		return nil, fmt.Errorf("auth: check username: %w", errCount)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, errHash := security.HashPassword(params.Password)
	if errHash != nil {
		return nil, errHash
	}

	updates := map[string]any{
		"username":        params.Username,
		"password":        hash,
		"is_password_set": true,
		"is_active":       true,
		"status":          models.AccountActive,
	}
	if errUpdate := s.db.WithContext(ctx).Model(user).Updates(updates).Error; errUpdate != nil {
		return nil, fmt.Errorf("auth: apply setup: %w", errUpdate)
	}

	if errConsume := s.codes.Consume(ctx, params.Email); errConsume != nil {
		log.WithError(errConsume).Warn("consume otp after setup")
	}
	if errConsume := s.invites.Consume(ctx, params.Token); errConsume != nil {
		log.WithError(errConsume).Warn("consume setup token after setup")
	}

	user.Username = params.Username
	user.Password = hash
	user.IsPasswordSet = true
	user.IsActive = true
	user.Status = models.AccountActive
	return user, nil
}

// Login authenticates by username or email. Accounts without a set password
// can never authenticate, whatever the stored hash.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("auth: query user: %w", errFind)
	}
	if !user.IsPasswordSet {
		return nil, ErrUnauthorized
	}
	if !security.CheckPassword(user.Password, password) {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// RequestPasswordReset reissues a setup token for an authenticated user and
// emails the reset link. The account state is unchanged.
func (s *Service) RequestPasswordReset(ctx context.Context, user *models.User) error {
	token, errIssue := s.invites.Issue(ctx, user)
	if errIssue != nil {
		return errIssue
	}
	link := s.frontendURL + "/reset-password?token=" + token
	s.notify(user.Email, "Reset Your Password", fmt.Sprintf(
		"Hello %s,\nUse this link to reset your password:\n%s\n\nThis link expires in 24 hours.",
		user.DisplayName(), link,
	))
	return nil
}

// BootstrapAdmin creates the fixed first admin once. Returns false when the
// admin already exists.
func (s *Service) BootstrapAdmin(ctx context.Context) (bool, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", settings.BootstrapAdminUsername).
		Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("auth: check bootstrap admin: %w", errCount)
	}
	if count > 0 {
		return false, nil
	}

	hash, errHash := security.HashPassword(settings.BootstrapAdminPassword)
	if errHash != nil {
		return false, errHash
	}
	admin := models.User{
		Username:      settings.BootstrapAdminUsername,
		Email:         settings.BootstrapAdminEmail,
		Role:          models.RoleAdmin,
		Status:        models.AccountActive,
		IsSuperuser:   true,
		IsActive:      true,
		IsPasswordSet: true,
		Password:      hash,
	}
	if errCreate := s.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return false, fmt.Errorf("auth: create bootstrap admin: %w", errCreate)
	}
	return true, nil
}

// notify sends mail without failing the caller; delivery is best-effort.
func (s *Service) notify(to, subject, body string) {
	if errSend := s.sender.Send(to, subject, body); errSend != nil {
		log.WithError(errSend).WithField("to", to).Error("send mail failed")
	}
}
