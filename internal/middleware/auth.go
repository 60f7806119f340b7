// Package middleware provides HTTP middleware for the external safety API:
// bearer authentication, request logging, rate limiting and security headers.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Eissaali11/nuzum/internal/auth"
	"github.com/Eissaali11/nuzum/internal/domain"
)

// EmployeeResolver loads the employee referenced by a token claim. Implemented
// by the repository layer.
type EmployeeResolver interface {
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// BearerAuth authenticates requests to the external safety API.
//
// The mobile client treats the 401 error strings as part of the wire contract,
// so the exact messages here must not change.
type BearerAuth struct {
	signer    *auth.TokenSigner
	employees EmployeeResolver
	logger    *slog.Logger
}

// NewBearerAuth creates the bearer authentication middleware.
func NewBearerAuth(signer *auth.TokenSigner, employees EmployeeResolver, logger *slog.Logger) *BearerAuth {
	return &BearerAuth{
		signer:    signer,
		employees: employees,
		logger:    logger,
	}
}

// RequireEmployee validates the Authorization header and stores the resolved
// employee in the request context. Requests that fail any step get a 401 with
// the matching contract message.
func (b *BearerAuth) RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			b.unauthorized(w, r, "token missing")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			b.unauthorized(w, r, "invalid token format")
			return
		}

		claims, err := b.signer.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				b.unauthorized(w, r, "token expired")
				return
			}
			b.unauthorized(w, r, "invalid token")
			return
		}

		employee, err := b.employees.GetEmployeeByID(r.Context(), claims.EmployeeID)
		if err != nil || employee == nil {
			b.unauthorized(w, r, "employee not found")
			return
		}

		ctx := auth.SetEmployee(r.Context(), employee)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *BearerAuth) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	b.logger.Warn("rejected unauthenticated request",
		"path", r.URL.Path,
		"reason", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
