package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/majorossy/phreshfoods.com-sub003/internal/auth"
)

// RoleAdmin is the role carried by administrator tokens.
const RoleAdmin = "admin"

var (
	// ErrInvalidCredentials is returned when the supplied password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAdminDisabled is returned when no admin password hash is configured.
	ErrAdminDisabled = errors.New("admin login is disabled")
)

// AuthService validates the shared admin password and issues tokens.
type AuthService struct {
	passwordHash []byte
	jwt          *auth.JWTManager
}

// NewAuthService constructs a new AuthService from a bcrypt hash.
func NewAuthService(passwordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{passwordHash: []byte(passwordHash), jwt: jwtManager}
}

// Login validates the admin password and returns a JWT.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", ErrAdminDisabled
	}
	if password == "" {
		return "", ErrInvalidCredentials
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken("admin", RoleAdmin)
}
