package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resto-system/internal/auth"
)

var testSecret = []byte("test-secret")

func TestGenerateAndParseToken(t *testing.T) {
	id := auth.Identity{UserID: 42, Username: "ana", Role: auth.RoleCashier, BranchID: 3}

	token, exp, err := GenerateToken(testSecret, id, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)

	got, err := claims.Identity()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParseToken_Rejects(t *testing.T) {
	id := auth.Identity{UserID: 1, Username: "x", Role: auth.RoleAdmin}

	expired, _, err := GenerateToken(testSecret, id, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)

	token, _, err := GenerateToken(testSecret, id, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestClaimsIdentity_UnknownRole(t *testing.T) {
	c := &Claims{UserId: 1, Role: "chef"}
	_, err := c.Identity()
	assert.Error(t, err)
}
