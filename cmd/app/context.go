package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/blogsite/internal/identity"
)

type contextKey string

const principalContextKey = contextKey("principal")

func (app *application) contextSetPrincipal(r *http.Request, principal identity.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalContextKey, principal)
	return r.WithContext(ctx)
}

// contextGetPrincipal must only be used behind requireAuth.
func (app *application) contextGetPrincipal(r *http.Request) identity.Principal {
	principal, ok := r.Context().Value(principalContextKey).(identity.Principal)
	if !ok {
		panic("missing principal value in request context")
	}
	return principal
}
