package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid login or password")

// AuthService checks the single operator account configured for the
// service and issues its bearer tokens.
type AuthService struct {
	login        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
}

func NewAuthService(login, passwordHash, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		login:        login,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
	}
}

// Enabled reports whether an operator password is configured.
func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

func (s *AuthService) Authenticate(login, password string) error {
	if !s.Enabled() {
		return ErrInvalidCredentials
	}
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(s.login)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil || !loginOK {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) IssueToken(login string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   login,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
