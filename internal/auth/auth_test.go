package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "correct horse"))
}

func TestVerificationToken(t *testing.T) {
	a, err := NewVerificationToken()
	require.NoError(t, err)
	b, err := NewVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	user := core.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}

	token, expires, err := s.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func TestSessionRejections(t *testing.T) {
	s := NewSessions(testSecret, time.Hour)
	token, _, err := s.Issue(core.User{ID: "u1"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessions(strings.Repeat("x", 32), time.Hour)
		_, err := other.Parse(token)
		assert.True(t, errors.Is(err, core.ErrUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		later := NewSessions(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Parse("not-a-token")
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID:           "u1",
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		raw, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Parse(raw)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogleProvider("client-id", "secret", "http://localhost:8081/auth/google/callback")
	u := g.AuthCodeURL("state-123")

	assert.Contains(t, u, "accounts.google.com")
	assert.Contains(t, u, "client_id=client-id")
	assert.Contains(t, u, "state=state-123")
}
