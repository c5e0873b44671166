package carbone

import (
	"fmt"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	// Service tokens are long; pad the claims past MinTokenLength.
	claims["aud"] = strings.Repeat("carbone", 50)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), MinTokenLength)
	return raw
}

func TestNewAPIToken(t *testing.T) {
	_, err := NewAPIToken("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewAPIToken(strings.Repeat("a", MinTokenLength-1))
	require.ErrorIs(t, err, ErrInvalidToken)

	token, err := NewAPIToken(strings.Repeat("a", MinTokenLength))
	require.NoError(t, err)
	assert.False(t, token.IsZero())
}

func TestAPITokenIsRedacted(t *testing.T) {
	token := testToken(t)

	assert.Equal(t, "[REDACTED]", token.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", token))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", token))
	assert.NotContains(t, fmt.Sprintf("%+v", struct{ Token APIToken }{token}), testTokenRaw)
}

func TestAPITokenExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := NewAPIToken(signedToken(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)

	got, ok := token.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
	assert.False(t, token.Expired(time.Now()))
	assert.True(t, token.Expired(exp.Add(time.Minute)))
}

func TestAPITokenWithoutExpiry(t *testing.T) {
	_, ok := testToken(t).ExpiresAt()
	assert.False(t, ok)
	assert.False(t, testToken(t).Expired(time.Now()))

	token, err := NewAPIToken(signedToken(t, jwt.MapClaims{"sub": "user"}))
	require.NoError(t, err)
	_, ok = token.ExpiresAt()
	assert.False(t, ok)
}
