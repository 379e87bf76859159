package services

import (
	"testing"
	"time"

	"wagerhub/domain/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	t.Parallel()
	manager := NewTokenManager("test-secret-key-0123456789", time.Hour)
	user := &entities.User{ID: TestUser1ID, Email: "a@example.com", Role: entities.RoleModerator}

	token, issued, err := manager.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, TestUser1ID, claims.UserID)
	assert.Equal(t, entities.RoleModerator, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenManager_Parse_Rejects(t *testing.T) {
	t.Parallel()
	manager := NewTokenManager("test-secret-key-0123456789", time.Hour)
	user := &entities.User{ID: TestUser1ID, Email: "a@example.com", Role: entities.RolePlayer}

	expired, _, err := NewTokenManager("test-secret-key-0123456789", -time.Minute).Issue(user)
	require.NoError(t, err)
	foreign, _, err := NewTokenManager("another-secret-key-987654", time.Hour).Issue(user)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &entities.Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"alg none":     none,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := manager.Parse(token)
			assert.ErrorIs(t, err, entities.ErrUnauthorized)
		})
	}
}
