package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TeamHandler serves admin team-management endpoints.
type TeamHandler struct {
	db  *gorm.DB
	svc *auth.Service
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(db *gorm.DB, svc *auth.Service) *TeamHandler {
	return &TeamHandler{db: db, svc: svc}
}

// createTeamRequest defines the invite payload.
type createTeamRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Create invites a team member: pending account, setup token, email.
func (h *TeamHandler) Create(c *gin.Context) {
	var body createTeamRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}
	name := strings.TrimSpace(body.Name)
	email := strings.TrimSpace(body.Email)
	role := strings.TrimSpace(body.Role)
	if name == "" || email == "" || role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Name, email & role required"})
		return
	}

	_, errCreate := h.svc.CreateTeamMember(c.Request.Context(), CurrentUser(c), name, email, role)
	if errCreate != nil {
		switch {
		case errors.Is(errCreate, auth.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"detail": "Only admin can create team members"})
		case errors.Is(errCreate, auth.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid role"})
		case errors.Is(errCreate, auth.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "User already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Create team member failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team member created, invitation sent",
		"email":   email,
		"role":    role,
	})
}

// List returns all non-admin team members, newest first.
func (h *TeamHandler) List(c *gin.Context) {
	var rows []models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Where("role IN ?", []models.Role{models.RoleManager, models.RoleSales}).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "List team failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		status := "inactive"
		if row.IsPasswordSet {
			status = "active"
		}
		out = append(out, gin.H{
			"id":       row.ID,
			"name":     row.DisplayName(),
			"username": row.Username,
			"email":    row.Email,
			"role":     row.Role,
			"status":   status,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Delete removes a manager/sales account and its setup tokens.
func (h *TeamHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid id"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	errFind := h.db.WithContext(ctx).
		Where("id = ? AND role IN ?", id, []models.Role{models.RoleManager, models.RoleSales}).
		First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Query failed"})
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDelTokens := tx.Where("user_id = ?", id).Delete(&models.PasswordSetupToken{}).Error; errDelTokens != nil {
			return errDelTokens
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team member removed"})
}
