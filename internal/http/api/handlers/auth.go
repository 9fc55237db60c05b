package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves login, session, and identity endpoints.
type AuthHandler struct {
	db       *gorm.DB
	svc      *auth.Service
	sessions *session.Issuer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, svc *auth.Service, sessions *session.Issuer) *AuthHandler {
	return &AuthHandler{db: db, svc: svc, sessions: sessions}
}

// loginRequest accepts username or email plus password.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns an access token plus the user payload.
// The refresh token travels only in the HttpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	identifier := strings.TrimSpace(body.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(body.Email)
	}
	password := body.Password
	if identifier == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username & password required"})
		return
	}

	user, errLogin := h.svc.Login(c.Request.Context(), identifier, password)
	if errLogin != nil {
		if errors.Is(errLogin, auth.ErrUnauthorized) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	pair, errMint := h.sessions.Mint(user)
	if errMint != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Issue tokens failed"})
		return
	}
	h.sessions.SetRefreshCookie(c, pair.Refresh)
	c.JSON(http.StatusOK, gin.H{
		"access": pair.Access,
		"user":   userPayload(user),
	})
}

// RefreshFromCookie mints a new access token from the refresh cookie. The
// refresh token itself is never rotated here.
func (h *AuthHandler) RefreshFromCookie(c *gin.Context) {
	claims, errCookie := h.sessions.RefreshFromCookie(c)
	if errCookie != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid refresh token"})
		return
	}

	user, errFind := h.loadUser(c, claims.UserID)
	if errFind != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid refresh token"})
		return
	}

	access, errMint := h.sessions.AccessToken(user)
	if errMint != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Issue token failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout clears the refresh cookie. Stateless otherwise; there is no
// server-side revocation list.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.ClearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me resolves the caller from the bearer access token, falling back to the
// refresh cookie read-only.
func (h *AuthHandler) Me(c *gin.Context) {
	user, errResolve := h.sessions.ResolveIdentity(c, h.db)
	if errResolve != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

// RequestPasswordReset emails a reset link to the authenticated caller.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
		return
	}
	if errReset := h.svc.RequestPasswordReset(c.Request.Context(), user); errReset != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Request reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent"})
}

// CreateAdmin creates the bootstrap admin once.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	created, errBootstrap := h.svc.BootstrapAdmin(c.Request.Context())
	if errBootstrap != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create admin failed"})
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "Admin user already exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin user created"})
}

func (h *AuthHandler) loadUser(c *gin.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		return nil, errFind
	}
	return &user, nil
}
