package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour, "propsnap")
	assert.Error(t, err)
}

func TestGenerateAndVerify(t *testing.T) {
	m, err := NewJWTManager("secret", time.Hour, "propsnap")
	require.NoError(t, err)

	token, expiresAt, err := m.Generate(Principal{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	p, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: "user-1", Email: "a@example.com"}, p)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m, err := NewJWTManager("secret", time.Minute, "propsnap")
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.Generate(Principal{ID: "user-1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecretAndAlgorithm(t *testing.T) {
	issuer, err := NewJWTManager("secret", time.Hour, "propsnap")
	require.NoError(t, err)
	other, err := NewJWTManager("other", time.Hour, "propsnap")
	require.NoError(t, err)

	token, _, err := issuer.Generate(Principal{ID: "user-1"})
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := h.Compare(hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "x")
	assert.Error(t, err)
}
