package security

import (
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Issue("b3f1c9e2-4a5d-4c3e-9f10-0a1b2c3d4e5f")
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "b3f1c9e2-4a5d-4c3e-9f10-0a1b2c3d4e5f", id)
	assert.Equal(t, time.Hour, issuer.TTL())
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), -time.Minute)
	token, err := issuer.Issue("u-1")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	other := NewTokenIssuer([]byte("other-secret"), time.Hour)
	token, err := other.Issue("u-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("test-secret"), time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestGetUserIDFromClaims(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{"user_id": 42})
	assert.Error(t, err)

	id, err := GetUserIDFromClaims(map[string]interface{}{"user_id": "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)
}

func TestTokenFromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromCookie(r))

	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "abc"})
	assert.Equal(t, "abc", TokenFromCookie(r))
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Compare(hash, "secret1"))
	assert.False(t, h.Compare(hash, "secret2"))
	assert.False(t, h.Compare("not-a-hash", "secret1"))
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestNewResetToken(t *testing.T) {
	token, digest, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 50)
	_, err = hex.DecodeString(token)
	assert.NoError(t, err)
	assert.Equal(t, HashResetToken(token), digest)
	assert.NotEqual(t, token, digest)

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
