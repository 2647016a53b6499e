package authentication

import (
	"errors"
	"os"
	"time"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is how long a session credential stays usable. There is no
// refresh mechanism; clients log in again after expiry.
const TokenValidity = 24 * time.Hour

var (
	ErrMissingToken = errors.New("authorization token is missing")
	ErrInvalidToken = errors.New("token is not valid")
	ErrExpiredToken = errors.New("token has expired")
)

func jwtKey() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("secretKey")
}

// GenerateToken signs a session credential embedding the identity id and role.
func GenerateToken(userID uint, role models.Role) (string, error) {
	claims := &models.AuthClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenValidity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// Authenticate parses and checks a session credential and returns its claims.
func Authenticate(signedToken string) (*models.AuthClaims, error) {
	if signedToken == "" {
		return nil, ErrMissingToken
	}

	var claims models.AuthClaims
	token, err := jwt.ParseWithClaims(signedToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtKey(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Role.Valid() || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
