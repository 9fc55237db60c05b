// Package app boots the API server from resolved configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/expodesk/expodesk/internal/auth"
	"github.com/expodesk/expodesk/internal/config"
	"github.com/expodesk/expodesk/internal/db"
	"github.com/expodesk/expodesk/internal/http/api"
	"github.com/expodesk/expodesk/internal/invite"
	"github.com/expodesk/expodesk/internal/mail"
	"github.com/expodesk/expodesk/internal/otp"
	"github.com/expodesk/expodesk/internal/session"
	"github.com/expodesk/expodesk/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server with database-backed components.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	serverCfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(serverCfg.JWT.Secret) == "" {
		return fmt.Errorf("missing jwt secret (set `jwt.secret` in config file or env %s)", config.EnvJWTSecret)
	}

	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	var codeStore otp.Store = otp.NewMemoryStore()
	if addr := strings.TrimSpace(serverCfg.Redis.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: serverCfg.Redis.Password,
			DB:       serverCfg.Redis.DB,
		})
		codeStore = otp.NewRedisStore(client, serverCfg.Redis.Prefix)
		log.Infof("using redis otp store at %s", addr)
	}

	sender := mail.NewSender(serverCfg.Mail)
	files := storage.NewLocalStore(serverCfg.UploadsDir)
	sessions := session.NewIssuer(serverCfg.JWT, serverCfg.CookieSecure())
	authSvc := auth.NewService(conn, invite.NewIssuer(conn), otp.NewService(codeStore), sender, serverCfg.FrontendURL)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(serverCfg.FrontendURL))
	engine.Static(storage.URLPrefix, files.BaseDir())

	api.RegisterRoutes(engine, api.Deps{
		DB:       conn,
		Auth:     authSvc,
		Sessions: sessions,
		Files:    files,
	})

	port := serverCfg.Port
	if port <= 0 {
		port = defaultPort
	}
	if port <= 0 {
		port = 8000
	}
	addr := fmt.Sprintf("%s:%d", strings.TrimSpace(serverCfg.Host), port)

	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting server on %s with config=%s", addr, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && errListen != http.ErrServerClosed {
		return errListen
	}
	return nil
}

// corsMiddleware allows the configured frontend origin with credentials. The
// refresh cookie travels cross-site, so a wildcard origin cannot be used.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	origin := strings.TrimRight(strings.TrimSpace(frontendURL), "/")
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
