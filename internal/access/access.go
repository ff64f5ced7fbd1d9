// Package access decides who may call an operation: Authenticate turns a
// bearer credential into a Principal and Authorize compares that Principal
// with the owner a resource claims.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sushihentaime/blogsite/internal/identity"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type Reason string

const (
	ReasonMissingOrMalformed Reason = "missing_or_malformed"
	ReasonInvalidToken       Reason = "invalid_token"
)

const bearerPrefix = "Bearer "

// AuthError is returned by Authenticate. It matches ErrUnauthorized.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unauthorized (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unauthorized (%s)", e.Reason)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Authenticate verifies the value of an Authorization header. The header must
// be "Bearer <token>"; the token is handed to v unchanged.
func Authenticate(ctx context.Context, v identity.Verifier, header string) (identity.Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", &AuthError{Reason: ReasonMissingOrMalformed}
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", &AuthError{Reason: ReasonMissingOrMalformed}
	}

	principal, err := v.Verify(ctx, token)
	if err != nil {
		return "", &AuthError{Reason: ReasonInvalidToken, Err: err}
	}

	return principal, nil
}

// Authorize allows the call only when the principal is exactly the claimed
// owner. There is no case folding or trimming.
func Authorize(principal identity.Principal, claimedOwner string) error {
	if principal == "" || string(principal) != claimedOwner {
		return ErrForbidden
	}
	return nil
}
