package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager_ValidityWindow(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issuedAt
	m := NewTokenManager("secret", DefaultTokenTTL).WithClock(func() time.Time { return current })

	token, err := m.Generate("student-1")
	require.NoError(t, err)

	t.Run("accepted after 29 days", func(t *testing.T) {
		current = issuedAt.Add(29 * 24 * time.Hour)
		id, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "student-1", id)
	})

	t.Run("rejected after 31 days", func(t *testing.T) {
		current = issuedAt.Add(31 * 24 * time.Hour)
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	other, err := NewTokenManager("other-secret", time.Hour).Generate("student-1")
	require.NoError(t, err)
	_, err = m.Validate(other)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "student-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_OnlyCarriesSubject(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Generate("admin-7")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Len(t, claims, 3)
	assert.Equal(t, "admin-7", claims["sub"])
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(DefaultBcryptCost)

	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)

	assert.NoError(t, h.Compare(hash, "s3cret!"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.CompareDummy("anything"), ErrPasswordMismatch)
}
