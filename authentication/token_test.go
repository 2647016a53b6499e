package authentication

import (
	"testing"
	"time"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndAuthenticate(t *testing.T) {
	signed, err := GenerateToken(42, models.RoleDonor)
	require.NoError(t, err)

	claims, err := Authenticate(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleDonor, claims.Role)
	assert.WithinDuration(t, time.Now().Add(TokenValidity), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthenticateMissingToken(t *testing.T) {
	_, err := Authenticate("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestAuthenticateGarbage(t *testing.T) {
	_, err := Authenticate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateWrongKey(t *testing.T) {
	claims := &models.AuthClaims{
		UserID: 7,
		Role:   models.RoleHospital,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someOtherKey"))
	require.NoError(t, err)

	_, err = Authenticate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	claims := &models.AuthClaims{
		UserID: 7,
		Role:   models.RoleDonor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey())
	require.NoError(t, err)

	_, err = Authenticate(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAuthenticateRejectsBogusClaims(t *testing.T) {
	cases := []struct {
		name   string
		userID uint
		role   models.Role
	}{
		{"unknown role", 7, models.Role("superuser")},
		{"zero user id", 0, models.RoleDonor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := &models.AuthClaims{
				UserID: tc.userID,
				Role:   tc.role,
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey())
			require.NoError(t, err)

			_, err = Authenticate(signed)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
