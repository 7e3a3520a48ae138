package auth

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type service struct {
	adminEmail   string
	passwordHash string // bcrypt hash from ADMIN_PASSWORD_HASH
	jwtSecret    []byte
}

// NewService creates an auth service for the single configured admin.
func NewService(adminEmail, passwordHash string, jwtSecret []byte) Service {
	return &service{adminEmail: adminEmail, passwordHash: passwordHash, jwtSecret: jwtSecret}
}

func (s *service) Login(_ context.Context, email, password string) (string, error) {
	if email != s.adminEmail {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := &jwt.StandardClaims{
		Subject:   "admin",
		ExpiresAt: time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
