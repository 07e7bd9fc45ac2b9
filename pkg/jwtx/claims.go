package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes. These are policy, not configuration.
const (
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// Claims is the payload carried by both token classes. Refresh tokens only
// ever carry the registered claims; Roles and FirstName are set on access
// tokens alone.
type Claims struct {
	jwt.RegisteredClaims

	// Roles granted to the subject at issuance, e.g. ["ADMIN","USER"].
	Roles []string `json:"roles,omitempty"`

	// FirstName is informational only and never used for authorization.
	FirstName string `json:"firstName,omitempty"`
}

// NewAccessClaims builds access-token claims expiring AccessTokenTTL after now.
func NewAccessClaims(subject, firstName string, roles []string, now time.Time) Claims {
	c := registered(subject, now, AccessTokenTTL)
	c.Roles = roles
	c.FirstName = firstName
	return c
}

// NewRefreshClaims builds refresh-token claims expiring RefreshTokenTTL after
// now. No role or profile data is attached.
func NewRefreshClaims(subject string, now time.Time) Claims {
	return registered(subject, now, RefreshTokenTTL)
}

func registered(subject string, now time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a random identifier for the "jti" claim so two tokens
// minted for the same subject within the same second still differ.
func NewJTI() string {
	return uuid.NewString()
}

// Expiry returns the expiration time or the zero time when exp is absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
