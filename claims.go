package blog

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload of an access token. Subject holds the user email.
type JWTClaims struct {
	jwt.RegisteredClaims
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// TokenID returns the jti claim
func (c *JWTClaims) TokenID() string {
	return c.RegisteredClaims.ID
}

// AccessToken is what login hands back to the client
type AccessToken struct {
	Token     string    `json:"access_token"`
	Type      string    `json:"token_type"`
	ExpiresAt time.Time `json:"-"`
}

// TokenTypeBearer is the only token type we issue
const TokenTypeBearer = "bearer"
