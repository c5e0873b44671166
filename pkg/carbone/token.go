package carbone

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// MinTokenLength is the shortest API token the Service accepts.
const MinTokenLength = 300

const redacted = "[REDACTED]"

// APIToken is the bearer credential sent with every request. It formats as
// "[REDACTED]" so it can be passed to loggers and %v verbs safely.
type APIToken struct {
	raw string
}

// NewAPIToken checks the length requirement up front so a malformed token
// fails here instead of as a refusal from the Service.
func NewAPIToken(raw string) (APIToken, error) {
	if len(raw) < MinTokenLength {
		return APIToken{}, fmt.Errorf("%w: expected at least %d characters, got %d", ErrInvalidToken, MinTokenLength, len(raw))
	}
	return APIToken{raw: raw}, nil
}

func (t APIToken) String() string   { return redacted }
func (t APIToken) GoString() string { return redacted }

// IsZero reports whether the token was never constructed.
func (t APIToken) IsZero() bool { return t.raw == "" }

func (t APIToken) bearer() string { return "Bearer " + t.raw }

// ExpiresAt reads the exp claim of a JWT token without verifying its
// signature. ok is false when the token is not a JWT or carries no exp.
func (t APIToken) ExpiresAt() (time.Time, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(t.raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token has an exp claim before now.
func (t APIToken) Expired(now time.Time) bool {
	exp, ok := t.ExpiresAt()
	return ok && exp.Before(now)
}
