package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators baked into the claims. A refresh token can never
// be presented where an access token is expected and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken indicates a token that failed signature, expiry, or type checks.
var ErrInvalidToken = errors.New("security: invalid token")

// Claims are the signed statements carried by both token kinds.
type Claims struct {
	UserID    uint64 `json:"user_id"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// NewAccessToken mints a short-lived HS256 access token carrying identity
// and role claims.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (string, error) {
	return signToken(secret, Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenTypeAccess,
	}, ttl)
}

// NewRefreshToken mints a longer-lived HS256 refresh token carrying only the
// user identity.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (string, error) {
	return signToken(secret, Claims{
		UserID:    userID,
		TokenType: tokenTypeRefresh,
	}, ttl)
}

func signToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies and decodes an access token.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	return parseToken(secret, raw, tokenTypeAccess)
}

// ParseRefreshToken verifies and decodes a refresh token.
func ParseRefreshToken(secret, raw string) (*Claims, error) {
	return parseToken(secret, raw, tokenTypeRefresh)
}

func parseToken(secret, raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
