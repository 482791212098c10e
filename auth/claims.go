// Package auth resolves bearer credentials into a stable user identity
// and role. Resolution is deliberately fail-open past the basic format
// and expiry checks: a provider or store hiccup degrades to a default
// role instead of locking users out. Authorization itself (policy,
// lifecycle) fails closed and lives elsewhere.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msafryx/carelum-backend/models"
)

var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// CurrentUser is the resolved identity attached to every authorized
// request.
type CurrentUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// tokenClaims mirrors the provider's JWT payload. The role hint rides
// in user metadata; the top-level "role" claim is the provider's
// postgres role ("authenticated") and is not a marketplace role.
type tokenClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		Role string `json:"role"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// decodeUnverified extracts subject, email and expiry without checking
// the signature. It exists to tolerate verifier outages while still
// rejecting garbled or expired tokens.
func decodeUnverified(token string, now time.Time) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
