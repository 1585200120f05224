package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"buildnchill-shop/internal/config"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier checks an admin login.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

// EnvVerifier checks a single admin account configured through the
// environment. The password is stored only as a bcrypt hash.
type EnvVerifier struct {
	Username     string
	PasswordHash []byte
}

func NewEnvVerifier(cfg config.AuthConfig) *EnvVerifier {
	return &EnvVerifier{Username: cfg.AdminUsername, PasswordHash: []byte(cfg.AdminPasswordHash)}
}

func (v *EnvVerifier) Verify(_ context.Context, username, password string) error {
	if v.Username == "" || len(v.PasswordHash) == 0 {
		return ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(v.PasswordHash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
