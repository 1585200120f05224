package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"buildnchill-shop/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken   = errors.New("authorization header is missing")
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionRevoked = errors.New("session is no longer active")
)

const issuer = "buildnchill-shop"

// AuthState is told when the first admin session starts and when the last
// one ends.
type AuthState interface {
	SetAuthenticated(ctx context.Context, active bool)
}

type Session struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues and checks admin session tokens.
type Manager struct {
	Verifier CredentialVerifier
	Store    SessionStore
	State    AuthState
	Logger   *logger.Logger
	TTL      time.Duration

	secret []byte
	now    func() time.Time
}

func NewManager(verifier CredentialVerifier, store SessionStore, secret string, ttl time.Duration, log *logger.Logger) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		log.Warn("AUTH", "JWT_SECRET not set, using a random key; sessions end on restart")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{Verifier: verifier, Store: store, Logger: log, TTL: ttl, secret: key, now: time.Now}
}

func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := m.Verifier.Verify(ctx, username, password); err != nil {
		m.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("username=%q", username))
		return nil, err
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := m.Store.Save(ctx, claims.ID, username, m.TTL); err != nil {
		return nil, err
	}

	if m.State != nil {
		m.State.SetAuthenticated(ctx, true)
	}
	m.Logger.Info("AUTH", fmt.Sprintf("Admin %s logged in", username))
	return &Session{Token: signed, Subject: username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate checks signature, expiry and that the session was not revoked.
func (m *Manager) Validate(ctx context.Context, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	live, err := m.Store.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (m *Manager) Logout(ctx context.Context, raw string) error {
	claims, err := m.Validate(ctx, raw)
	if err != nil {
		return err
	}
	if err := m.Store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.Logger.Info("AUTH", fmt.Sprintf("Admin %s logged out", claims.Subject))

	if m.State == nil {
		return nil
	}
	remaining, err := m.Store.Count(ctx)
	if err != nil {
		m.Logger.Warn("AUTH", fmt.Sprintf("Could not count sessions after logout: %v", err))
		return nil
	}
	if remaining == 0 {
		m.State.SetAuthenticated(ctx, false)
	}
	return nil
}

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's Authorization header
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}
