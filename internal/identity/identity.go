// Package identity verifies bearer credentials issued by an external identity
// provider and turns them into a Principal.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid identity token")

// Principal is the verified identity of a caller, the account email.
type Principal string

type Verifier interface {
	Verify(ctx context.Context, credential string) (Principal, error)
}

// Claims are the ID token claims the verifiers rely on.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

func principalFromClaims(c *Claims) (Principal, error) {
	if strings.TrimSpace(c.Subject) == "" {
		return "", fmt.Errorf("%w: subject required", ErrInvalidToken)
	}

	if c.Email == "" {
		return "", fmt.Errorf("%w: email claim required", ErrInvalidToken)
	}

	return Principal(c.Email), nil
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidToken) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
