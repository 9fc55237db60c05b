package settings

import "time"

// Lifetimes and limits for the auth and content flows.
const (
	// AccessTokenLifetime is the default validity of an access token.
	AccessTokenLifetime = 60 * time.Minute
	// RefreshTokenLifetime is the default validity of a refresh token and the
	// max-age of the refresh cookie.
	RefreshTokenLifetime = 24 * time.Hour
	// OTPLifetime is the validity window of an emailed one-time code.
	OTPLifetime = 5 * time.Minute
	// RefreshCookieName is the HttpOnly cookie carrying the refresh token.
	RefreshCookieName = "refresh"
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6
)

// Bootstrap admin defaults, created once via the create-admin endpoint.
const (
	// BootstrapAdminUsername is the fixed first-admin login name.
	BootstrapAdminUsername = "admin"
	// BootstrapAdminEmail is the fixed first-admin email.
	BootstrapAdminEmail = "admin@example.com"
	// BootstrapAdminPassword is the initial first-admin password.
	BootstrapAdminPassword = "admin123"
)

// Gallery section capacity rules.
const (
	// AboutBannerMaxImages caps the about-page banner section.
	AboutBannerMaxImages = 1
	// AboutSectionMaxImages caps the about-page highlight sections.
	AboutSectionMaxImages = 10
	// GalleryMainMaxImages caps the gallery-page main section.
	GalleryMainMaxImages = 5
)
