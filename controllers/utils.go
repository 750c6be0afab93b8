package controllers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const userTokenTTL = 72 * time.Hour

// GenerateUserToken signs an HS256 token whose subject is the user id.
func GenerateUserToken(userPk string, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(userTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString([]byte(secret))
}
