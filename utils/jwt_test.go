package utils

import (
	"testing"
	"time"

	"mindease/models"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestReadAccessClaimsVerified(t *testing.T) {
	token := signed(t, "s3cret", jwt.MapClaims{
		"user_id":  17,
		"username": "asha",
		"role":     "therapist",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	claims, err := ReadAccessClaims(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "17", claims.UserID)
	assert.Equal(t, "asha", claims.Username)
	assert.Equal(t, models.RoleTherapist, claims.Role)
}

func TestReadAccessClaimsRejectsWrongSecret(t *testing.T) {
	token := signed(t, "s3cret", jwt.MapClaims{"user_id": 1})
	_, err := ReadAccessClaims(token, "other")
	assert.Error(t, err)
}

func TestReadAccessClaimsUnverifiedExpired(t *testing.T) {
	token := signed(t, "whatever", jwt.MapClaims{
		"user_id": 3,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	_, err := ReadAccessClaims(token, "")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestReadAccessClaimsFallsBackToIDClaim(t *testing.T) {
	token := signed(t, "k", jwt.MapClaims{"id": "44"})
	claims, err := ReadAccessClaims(token, "")
	require.NoError(t, err)
	assert.Equal(t, "44", claims.UserID)
}
