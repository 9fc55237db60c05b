package handlers

import (
	"github.com/expodesk/expodesk/internal/models"
	"github.com/gin-gonic/gin"
)

// userContextKey is the gin context key holding the resolved user.
const userContextKey = "currentUser"

// SetCurrentUser stores the resolved user on the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the resolved user, or nil outside authenticated routes.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// userPayload is the user shape returned by auth endpoints.
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.PublicRole(),
		"name":     user.DisplayName(),
	}
}
