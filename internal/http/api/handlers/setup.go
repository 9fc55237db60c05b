package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/invite"
	"github.com/expodesk/expodesk/internal/otp"
	"github.com/expodesk/expodesk/internal/session"
	"github.com/expodesk/expodesk/internal/settings"
	"github.com/gin-gonic/gin"
)

// SetupHandler serves the OTP and password-setup endpoints of the invite flow.
type SetupHandler struct {
	svc      *auth.Service
	sessions *session.Issuer
}

// NewSetupHandler constructs a SetupHandler.
func NewSetupHandler(svc *auth.Service, sessions *session.Issuer) *SetupHandler {
	return &SetupHandler{svc: svc, sessions: sessions}
}

// sendOTPRequest defines the OTP request payload.
type sendOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// SendOTP issues a one-time code, gated on a live setup token for the email.
func (h *SetupHandler) SendOTP(c *gin.Context) {
	var body sendOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	email := strings.TrimSpace(body.Email)
	token := strings.TrimSpace(body.Token)
	if email == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email & token required"})
		return
	}

	if errSend := h.svc.SendOTP(c.Request.Context(), email, token); errSend != nil {
		switch {
		case errors.Is(errSend, invite.ErrEmailMismatch):
			c.JSON(http.StatusForbidden, gin.H{"detail": "Email does not match invitation"})
		case errors.Is(errSend, invite.ErrTokenNotFound), errors.Is(errSend, invite.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or expired link"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Send OTP failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}

// verifyOTPRequest defines the OTP check payload.
type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP checks a code without consuming it; password creation re-verifies
// and performs the final cleanup.
func (h *SetupHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	email := strings.TrimSpace(body.Email)
	code := strings.TrimSpace(body.OTP)
	if email == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email & OTP required"})
		return
	}

	if errVerify := h.svc.Codes().Verify(c.Request.Context(), email, code); errVerify != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": otpErrorDetail(errVerify)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
}

// createPasswordRequest defines the setup completion payload.
type createPasswordRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

// CreatePassword completes the invite or reset flow and auto-logs in.
func (h *SetupHandler) CreatePassword(c *gin.Context) {
	var body createPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	params := auth.SetupParams{
		Email:    strings.TrimSpace(body.Email),
		OTP:      strings.TrimSpace(body.OTP),
		Password: body.Password,
		Token:    strings.TrimSpace(body.Token),
		Username: strings.TrimSpace(body.Username),
	}
	if params.Email == "" || params.OTP == "" || params.Password == "" || params.Token == "" || params.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing required fields (email, otp, password, token, username)"})
		return
	}
	if len(params.Password) < settings.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Password must be at least 6 characters"})
		return
	}

	user, errSetup := h.svc.CompleteSetup(c.Request.Context(), params)
	if errSetup != nil {
		switch {
		case errors.Is(errSetup, otp.ErrNotFound), errors.Is(errSetup, otp.ErrExpired), errors.Is(errSetup, otp.ErrMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"detail": otpErrorDetail(errSetup)})
		case errors.Is(errSetup, invite.ErrTokenNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid link"})
		case errors.Is(errSetup, invite.ErrTokenExpired):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Link expired"})
		case errors.Is(errSetup, invite.ErrEmailMismatch):
			c.JSON(http.StatusForbidden, gin.H{"detail": "Email mismatch"})
		case errors.Is(errSetup, auth.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already taken"})
		case errors.Is(errSetup, auth.ErrNotPending):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Account cannot complete setup"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create password failed"})
		}
		return
	}

	pair, errMint := h.sessions.Mint(user)
	if errMint != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Issue tokens failed"})
		return
	}
	h.sessions.SetRefreshCookie(c, pair.Refresh)
	c.JSON(http.StatusOK, gin.H{
		"message": "Password created successfully",
		"access":  pair.Access,
		"user":    userPayload(user),
	})
}

// otpErrorDetail maps OTP validation failures to client messages.
func otpErrorDetail(err error) string {
	switch {
	case errors.Is(err, otp.ErrNotFound):
		return "OTP not found"
	case errors.Is(err, otp.ErrExpired):
		return "OTP expired"
	case errors.Is(err, otp.ErrMismatch):
		return "Invalid OTP"
	default:
		return "OTP verification failed"
	}
}
