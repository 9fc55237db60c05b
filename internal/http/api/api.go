// Package api registers the HTTP surface and its middleware.
package api

import (
	"net/http"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/http/api/handlers"
	"github.com/expodesk/expodesk/internal/session"
	"github.com/expodesk/expodesk/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles the collaborators handlers need.
type Deps struct {
	DB       *gorm.DB
	Auth     *auth.Service
	Sessions *session.Issuer
	Files    storage.Store
}

// RegisterRoutes wires all endpoints onto the engine.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	systemHandler := handlers.NewSystemHandler(deps.DB)
	r.GET("/", systemHandler.Health)

	authed := authMiddleware(deps)
	adminOnly := requireAdmin()

	r.POST("/system/update/", authed, adminOnly, systemHandler.Update)

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Auth, deps.Sessions)
	apiGroup := r.Group("/api")
	apiGroup.POST("/login/", authHandler.Login)
	apiGroup.POST("/token/refresh-cookie/", authHandler.RefreshFromCookie)
	apiGroup.POST("/logout/", authHandler.Logout)
	apiGroup.GET("/me/", authHandler.Me)
	apiGroup.POST("/create-admin/", authHandler.CreateAdmin)
	apiGroup.POST("/password/reset/", authed, authHandler.RequestPasswordReset)

	teamHandler := handlers.NewTeamHandler(deps.DB, deps.Auth)
	apiGroup.POST("/team/create/", authed, adminOnly, teamHandler.Create)
	apiGroup.GET("/team/list/", authed, adminOnly, teamHandler.List)
	apiGroup.DELETE("/team/delete/:id", authed, adminOnly, teamHandler.Delete)

	setupHandler := handlers.NewSetupHandler(deps.Auth, deps.Sessions)
	apiGroup.POST("/password/send-otp/", setupHandler.SendOTP)
	apiGroup.POST("/password/verify-otp/", setupHandler.VerifyOTP)
	apiGroup.POST("/password/create/", setupHandler.CreatePassword)

	exhibitorHandler := handlers.NewExhibitorHandler(deps.DB)
	apiGroup.POST("/exhibitor-registrations", exhibitorHandler.Create)
	apiGroup.GET("/exhibitor-registrations", exhibitorHandler.List)
	apiGroup.GET("/exhibitor-registrations/:id", exhibitorHandler.Get)
	apiGroup.DELETE("/exhibitor-registrations/:id", exhibitorHandler.Delete)

	visitorHandler := handlers.NewVisitorHandler(deps.DB)
	apiGroup.POST("/visitor-registrations", visitorHandler.Create)
	apiGroup.GET("/visitor-registrations", visitorHandler.List)
	apiGroup.GET("/visitor-registrations/:id", visitorHandler.Get)
	apiGroup.DELETE("/visitor-registrations/:id", visitorHandler.Delete)

	categoryHandler := handlers.NewCategoryHandler(deps.DB, deps.Files)
	apiGroup.GET("/categories", categoryHandler.List)
	apiGroup.POST("/categories", categoryHandler.Create)
	apiGroup.DELETE("/categories/:id", categoryHandler.Delete)

	eventHandler := handlers.NewEventHandler(deps.DB)
	apiGroup.GET("/events", eventHandler.List)
	apiGroup.POST("/events", eventHandler.Create)
	apiGroup.PUT("/events/:id", eventHandler.Update)
	apiGroup.DELETE("/events/:id", eventHandler.Delete)

	galleryHandler := handlers.NewGalleryHandler(deps.DB, deps.Files)
	apiGroup.GET("/gallery", galleryHandler.List)
	apiGroup.POST("/gallery", authed, requireContentManager(), galleryHandler.Create)
	apiGroup.DELETE("/gallery/:id", authed, requireContentManager(), galleryHandler.Delete)
}

// authMiddleware resolves the caller's identity from the bearer access token,
// falling back to the refresh cookie read-only.
func authMiddleware(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, errResolve := deps.Sessions.ResolveIdentity(c, deps.DB)
		if errResolve != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		handlers.SetCurrentUser(c, user)
		c.Next()
	}
}

// requireAdmin gates routes on team-management capability.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlers.CurrentUser(c)
		if user == nil || !user.CanManageTeam() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Only admin can perform this action"})
			return
		}
		c.Next()
	}
}

// requireContentManager gates routes on content-management capability.
func requireContentManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handlers.CurrentUser(c)
		if user == nil || !user.CanManageContent() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Only admin or manager can manage content"})
			return
		}
		c.Next()
	}
}
