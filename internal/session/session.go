// Package session mints access/refresh token pairs and owns the refresh
// cookie contract: HttpOnly, SameSite=None, path /, never exposed to the
// response body.
package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/expodesk/expodesk/internal/config"
	"github.com/expodesk/expodesk/internal/models"
	"github.com/expodesk/expodesk/internal/security"
	"github.com/expodesk/expodesk/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrUnauthenticated indicates no usable credential was presented.
var ErrUnauthenticated = errors.New("session: unauthenticated")

// TokenPair bundles a freshly minted access and refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// Issuer mints token pairs and resolves identities from requests.
type Issuer struct {
	jwt          config.JWTConfig
	cookieSecure bool
}

// NewIssuer constructs an Issuer.
func NewIssuer(jwt config.JWTConfig, cookieSecure bool) *Issuer {
	return &Issuer{jwt: jwt, cookieSecure: cookieSecure}
}

// Mint creates an access/refresh pair for the user. Tokens are stateless;
// no server-side session row is written.
func (i *Issuer) Mint(user *models.User) (TokenPair, error) {
	access, errAccess := security.NewAccessToken(i.jwt.Secret, user.ID, string(user.PublicRole()), i.jwt.AccessExpiry)
	if errAccess != nil {
		return TokenPair{}, errAccess
	}
	refresh, errRefresh := security.NewRefreshToken(i.jwt.Secret, user.ID, i.jwt.RefreshExpiry)
	if errRefresh != nil {
		return TokenPair{}, errRefresh
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// SetRefreshCookie attaches the refresh token as the cross-site cookie.
func (i *Issuer) SetRefreshCookie(c *gin.Context, refresh string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     settings.RefreshCookieName,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(i.jwt.RefreshExpiry.Seconds()),
		HttpOnly: true,
		Secure:   i.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

// ClearRefreshCookie expires the refresh cookie.
func (i *Issuer) ClearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     settings.RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   i.cookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

// RefreshFromCookie parses the refresh cookie and returns its claims.
func (i *Issuer) RefreshFromCookie(c *gin.Context) (*security.Claims, error) {
	raw, errCookie := c.Cookie(settings.RefreshCookieName)
	if errCookie != nil || strings.TrimSpace(raw) == "" {
		return nil, ErrUnauthenticated
	}
	claims, errParse := security.ParseRefreshToken(i.jwt.Secret, raw)
	if errParse != nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// AccessToken mints a bare access token for the user; used by the refresh
// endpoint, which never rotates the refresh token.
func (i *Issuer) AccessToken(user *models.User) (string, error) {
	return security.NewAccessToken(i.jwt.Secret, user.ID, string(user.PublicRole()), i.jwt.AccessExpiry)
}

// ResolveIdentity loads the user behind the request credential. A bearer
// access token is preferred; the refresh cookie is a read-only fallback that
// mints nothing.
func (i *Issuer) ResolveIdentity(c *gin.Context, conn *gorm.DB) (*models.User, error) {
	var userID uint64

	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		claims, errParse := security.ParseAccessToken(i.jwt.Secret, strings.TrimSpace(token))
		if errParse == nil {
			userID = claims.UserID
		}
	}
	if userID == 0 {
		claims, errCookie := i.RefreshFromCookie(c)
		if errCookie != nil {
			return nil, ErrUnauthenticated
		}
		userID = claims.UserID
	}

	var user models.User
	if errFind := conn.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}
