package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/robot-fleet/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return service
}

func TestNewService(t *testing.T) {
	service := newTestService(t)
	assert.Equal(t, time.Hour, service.tokenExp)

	_, err := NewService("", time.Hour)
	assert.Error(t, err)
	_, err = NewService("secret", 0)
	assert.Error(t, err)
}

func TestService_Passwords(t *testing.T) {
	service := newTestService(t)

	hash, err := service.HashPassword("testpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword123", hash)
	assert.True(t, service.CheckPassword("testpassword123", hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_TokenRoundTrip(t *testing.T) {
	service := newTestService(t)
	user := &models.User{ID: primitive.NewObjectID(), Username: "tech", Role: models.RoleTechnician}

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "tech", claims.Username)
	assert.Equal(t, models.RoleTechnician, claims.Role)
	assert.Greater(t, claims.Exp, time.Now().Unix())
}

func TestService_ValidateToken_Rejects(t *testing.T) {
	service := newTestService(t)
	user := &models.User{ID: primitive.NewObjectID(), Username: "tech", Role: models.RoleViewer}

	_, err := service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	other, err := NewService("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = service.ValidateToken(foreign)
	assert.Equal(t, ErrInvalidToken, err)

	service.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := service.GenerateToken(user)
	require.NoError(t, err)
	service.now = time.Now
	_, err = service.ValidateToken(expired)
	assert.Equal(t, ErrExpiredToken, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": user.ID.Hex()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = service.ValidateToken(unsigned)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := newTestService(t)
	a, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	token, err := service.ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		_, err := service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, header)
	}
}

func TestService_Validation(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("longenough"))
	assert.ErrorIs(t, service.ValidatePassword("short"), ErrWeakPassword)

	assert.NoError(t, service.ValidateEmail("tech@plant.example.com"))
	assert.ErrorIs(t, service.ValidateEmail("@example.com"), ErrInvalidEmail)
	assert.ErrorIs(t, service.ValidateEmail("tech.example@com"), ErrInvalidEmail)

	assert.NoError(t, service.ValidateUsername("tech"))
	assert.ErrorIs(t, service.ValidateUsername("ab"), ErrInvalidUsername)
}
