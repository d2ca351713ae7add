package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		assert.True(t, IsValidRole(r), r)
	}
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("Admin"))
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	u := &User{
		ID:             "u-1",
		Username:       "alice1",
		Email:          "a@x.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           RoleUser,
	}
	u.SetResetToken("deadbeef", time.Now().Add(time.Hour))

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "alice1", m["username"])
	for _, k := range []string{"HashedPassword", "hashed_password", "password", "ResetTokenHash", "ResetExpiresAt"} {
		assert.NotContains(t, m, k)
	}
	assert.NotContains(t, string(b), "deadbeef")
	assert.NotContains(t, string(b), u.HashedPassword)
}

func TestUser_ResetTokenPair(t *testing.T) {
	u := &User{}
	u.SetResetToken("digest", time.Now())
	require.NotNil(t, u.ResetTokenHash)
	require.NotNil(t, u.ResetExpiresAt)

	u.ClearResetToken()
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetExpiresAt)
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: "u-1", Username: "alice1", Email: "a@x.com", Role: RoleAdmin, City: "Kochi"}
	assert.Equal(t, PublicUser{ID: "u-1", Email: "a@x.com", Username: "alice1", Role: RoleAdmin}, u.Public())
}
