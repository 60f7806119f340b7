// Package auth provides bearer-token authentication for the external
// safety-check API: HS256 token minting/validation and request-context
// helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// employeeContextKey is the key used to store the authenticated employee
	// in context. The identity is valid for the duration of a single request.
	employeeContextKey contextKey = "employee"
)

// GetEmployee retrieves the authenticated employee from the context.
//
// Returns nil if no employee is authenticated.
//
// Usage:
//
//	employee := auth.GetEmployee(r.Context())
//	if employee == nil {
//	    // Handle unauthenticated request
//	}
func GetEmployee(ctx context.Context) *domain.Employee {
	employee, ok := ctx.Value(employeeContextKey).(*domain.Employee)
	if !ok {
		return nil
	}
	return employee
}

// GetEmployeeFromRequest retrieves the authenticated employee from the
// request context.
func GetEmployeeFromRequest(r *http.Request) *domain.Employee {
	return GetEmployee(r.Context())
}

// SetEmployee stores an employee in the context.
//
// This is called by the bearer middleware after validating a token.
func SetEmployee(ctx context.Context, employee *domain.Employee) context.Context {
	return context.WithValue(ctx, employeeContextKey, employee)
}
