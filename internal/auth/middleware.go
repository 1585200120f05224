package auth

import (
	"context"
	"errors"
	"net/http"

	"buildnchill-shop/internal/utils"
)

type contextKey string

const subjectKey contextKey = "admin_subject"

// Middleware rejects requests without a live admin session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := ExtractTokenFromRequest(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", err)
			return
		}

		claims, err := m.Validate(r.Context(), raw)
		if err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrSessionRevoked) {
				status = http.StatusInternalServerError
			}
			m.Logger.LogSecurity("TOKEN_REJECTED", err.Error())
			utils.WriteError(w, status, "Unauthorized", err)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject returns the admin username stored by Middleware.
func Subject(ctx context.Context) string {
	if sub, ok := ctx.Value(subjectKey).(string); ok {
		return sub
	}
	return ""
}
