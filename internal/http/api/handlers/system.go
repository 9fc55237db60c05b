package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	dbutil "github.com/expodesk/expodesk/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler serves the health check and maintenance-mode toggle.
type SystemHandler struct {
	db *gorm.DB
}

// NewSystemHandler constructs a SystemHandler.
func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports service and maintenance status. An unreachable database is
// absorbed into domain state: it forces under_maintenance=true rather than
// leaking a raw failure.
func (h *SystemHandler) Health(c *gin.Context) {
	sqlDB, errDB := h.db.DB()
	if errDB == nil {
		errDB = sqlDB.PingContext(c.Request.Context())
	}
	if errDB != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":            "error",
			"db":                errDB.Error(),
			"under_maintenance": true,
			"date_of_online":    nil,
		})
		return
	}

	row, errSettings := dbutil.GetSystemSettings(h.db.WithContext(c.Request.Context()))
	if errSettings != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":            "error",
			"db":                errSettings.Error(),
			"under_maintenance": true,
			"date_of_online":    nil,
		})
		return
	}

	var dateOfOnline *time.Time
	if row.UnderMaintenance {
		dateOfOnline = row.DateOfOnline
	}
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"db":                "ok",
		"under_maintenance": row.UnderMaintenance,
		"date_of_online":    dateOfOnline,
	})
}

// updateSystemRequest defines the partial settings update payload. The date
// is raw JSON so an explicit null (clear the date) can be told apart from an
// absent field (leave it alone).
type updateSystemRequest struct {
	UnderMaintenance *bool           `json:"under_maintenance"`
	DateOfOnline     json.RawMessage `json:"date_of_online"`
}

// Update partially updates the settings singleton. Admin-only; role gating
// happens in middleware, re-checked here for defense at the boundary.
func (h *SystemHandler) Update(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || !user.CanManageSystem() {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Only admin can update settings"})
		return
	}

	var body updateSystemRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	row, errSettings := dbutil.GetSystemSettings(h.db.WithContext(ctx))
	if errSettings != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Load settings failed"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.UnderMaintenance != nil {
		updates["under_maintenance"] = *body.UnderMaintenance
	}
	if len(body.DateOfOnline) > 0 {
		if string(body.DateOfOnline) == "null" {
			updates["date_of_online"] = nil
		} else {
			var when time.Time
			if errParse := json.Unmarshal(body.DateOfOnline, &when); errParse != nil {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid date_of_online"})
				return
			}
			updates["date_of_online"] = when
		}
	}
	if errUpdate := h.db.WithContext(ctx).Model(row).Updates(updates).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Update settings failed"})
		return
	}

	refreshed, errReload := dbutil.GetSystemSettings(h.db.WithContext(ctx))
	if errReload != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Load settings failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "System settings updated",
		"settings": gin.H{
			"under_maintenance": refreshed.UnderMaintenance,
			"date_of_online":    refreshed.DateOfOnline,
		},
	})
}
