package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/expodesk/expodesk/internal/settings"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath       = "CONFIG_PATH"
	EnvDBConnection     = "DB_CONNECTION"
	EnvJWTSecret        = "JWT_SECRET"
	EnvJWTAccessExpiry  = "JWT_ACCESS_EXPIRY"
	EnvJWTRefreshExpiry = "JWT_REFRESH_EXPIRY"
	EnvFrontendURL      = "FRONTEND_URL"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and token lifetimes.
type JWTConfig struct {
	Secret        string        `yaml:"secret"`
	AccessExpiry  time.Duration `yaml:"access-expiry"`
	RefreshExpiry time.Duration `yaml:"refresh-expiry"`
}

// CookieConfig controls refresh cookie delivery. SameSite is always None
// because the frontend is served cross-site; only Secure is negotiable so
// local HTTP development keeps working.
type CookieConfig struct {
	Secure *bool `yaml:"secure"`
}

// MailConfig holds SMTP settings for the notification sender.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// RedisConfig holds optional shared OTP store settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ServerConfig holds the YAML fields consumed by the HTTP server.
type ServerConfig struct {
	Host        string       `yaml:"host"`
	Port        int          `yaml:"port"`
	FrontendURL string       `yaml:"frontend-url"`
	UploadsDir  string       `yaml:"uploads-dir"`
	JWT         JWTConfig    `yaml:"jwt"`
	Cookie      CookieConfig `yaml:"cookie"`
	Mail        MailConfig   `yaml:"mail"`
	Redis       RedisConfig  `yaml:"redis"`
}

// Defaults applied when the config file omits values.
const (
	defaultAccessExpiry  = settings.AccessTokenLifetime
	defaultRefreshExpiry = settings.RefreshTokenLifetime
	defaultUploadsDir    = "./uploads"
)

// LoadDatabaseDSN reads the database DSN from env or the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// LoadServerConfig loads server settings from the YAML config file with env
// overrides for the JWT and frontend values.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	result := ServerConfig{
		UploadsDir: defaultUploadsDir,
		JWT: JWTConfig{
			AccessExpiry:  defaultAccessExpiry,
			RefreshExpiry: defaultRefreshExpiry,
		},
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &result); errUnmarshal != nil {
			return ServerConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.JWT.Secret = secret
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJWTAccessExpiry)); raw != "" {
		if expiry, errParse := time.ParseDuration(raw); errParse == nil && expiry > 0 {
			result.JWT.AccessExpiry = expiry
		}
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJWTRefreshExpiry)); raw != "" {
		if expiry, errParse := time.ParseDuration(raw); errParse == nil && expiry > 0 {
			result.JWT.RefreshExpiry = expiry
		}
	}
	if frontend := strings.TrimSpace(os.Getenv(EnvFrontendURL)); frontend != "" {
		result.FrontendURL = frontend
	}

	if result.JWT.AccessExpiry <= 0 {
		result.JWT.AccessExpiry = defaultAccessExpiry
	}
	if result.JWT.RefreshExpiry <= 0 {
		result.JWT.RefreshExpiry = defaultRefreshExpiry
	}
	if strings.TrimSpace(result.UploadsDir) == "" {
		result.UploadsDir = defaultUploadsDir
	}
	return result, nil
}

// CookieSecure resolves the refresh cookie Secure flag, defaulting to true.
func (c ServerConfig) CookieSecure() bool {
	if c.Cookie.Secure == nil {
		return true
	}
	return *c.Cookie.Secure
}
