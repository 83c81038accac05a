package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "opsledger/pkg/domain-errors"
)

func newTestService() *JWTService {
	return NewJWTService("test-signing-key", "opsledger", "opsledger")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "opsledger", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongKey(t *testing.T) {
	token, err := NewJWTService("other-key", "opsledger", "opsledger").
		GenerateAccessToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	token, err := svc.GenerateAccessToken(uuid.New(), -time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
}

func TestExtractUserIDFromToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	got, err := svc.ExtractUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
