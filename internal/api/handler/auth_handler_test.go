package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sahaya_api/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCookie(t *testing.T) {
	c := SessionCookie{Secure: true, TTL: time.Hour}

	rr := httptest.NewRecorder()
	c.set(rr, "signed.jwt.value")
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	got := cookies[0]
	assert.Equal(t, security.AccessTokenCookie, got.Name)
	assert.Equal(t, "signed.jwt.value", got.Value)
	assert.Equal(t, "/", got.Path)
	assert.Equal(t, 3600, got.MaxAge)
	assert.True(t, got.HttpOnly)
	assert.True(t, got.Secure)

	rr = httptest.NewRecorder()
	c.clear(rr)
	cookies = rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
}

func TestSignoutWithoutSession(t *testing.T) {
	h := NewAuthHandler(nil, SessionCookie{TTL: time.Hour}, nil)

	rr := httptest.NewRecorder()
	h.signout(rr, httptest.NewRequest(http.MethodPost, "/signout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"User has been signed out"}`, rr.Body.String())
}
