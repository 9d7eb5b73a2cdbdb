package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagtibay/clinic-api/internal/model"
)

func testUser() *model.User {
	u := &model.User{
		Username: "reception",
		IsStaff:  true,
	}
	u.ID = uuid.New()
	return u
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1)
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "reception", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestJWTRefreshTokenUsesSeparateSecret(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1)
	user := testUser()

	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not pass as an access token")

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1)
	other := NewJWTService("different-secret", "refresh-secret", 1)

	token, err := other.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", 1)
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
