package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brigadehq/roster/internal/models"
)

func TestTokenService(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	member := &models.Member{
		ID:        uuid.New(),
		BrigadeID: uuid.New(),
		Role:      models.RoleAdmin,
	}

	t.Run("round trip", func(t *testing.T) {
		tokenString, expiresAt, err := service.CreateToken(member)
		require.NoError(t, err)
		assert.NotEmpty(t, tokenString)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

		decoded, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, member.ID, decoded.MemberID)
		assert.Equal(t, member.BrigadeID, decoded.BrigadeID)
		assert.Equal(t, models.RoleAdmin, decoded.Role)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		tokenString, _, err := service.CreateToken(member)
		require.NoError(t, err)

		other := NewTokenService("other-secret", time.Hour)
		_, err = other.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewTokenService("test-secret", -time.Hour)
		tokenString, _, err := expired.CreateToken(member)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}
