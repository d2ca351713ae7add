package security

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie carries the session token between client and server.
const AccessTokenCookie = "access_token"

const userIDClaim = "user_id"

// TokenIssuer signs and verifies HS256 session tokens carrying a user id.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth: jwtauth.New("HS256", key, nil),
		ttl:  ttl,
	}
}

// JWTAuth exposes the underlying verifier for the session middleware.
func (t *TokenIssuer) JWTAuth() *jwtauth.JWTAuth { return t.auth }

// TTL is the lifetime of an issued token.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

func (t *TokenIssuer) Issue(userID string) (string, error) {
	claims := map[string]interface{}{userIDClaim: userID}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, t.ttl)
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Verify checks signature and expiry and returns the user id.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(t.auth, tokenString)
	if err != nil {
		return "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	return GetUserIDFromClaims(claims)
}

// GetUserIDFromClaims extracts the user id claim.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[userIDClaim].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

// TokenFromCookie is a jwtauth token finder for the session cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
