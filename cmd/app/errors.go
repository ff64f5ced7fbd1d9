package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/blogsite/internal/access"
	"github.com/sushihentaime/blogsite/internal/blogservice"
	"github.com/sushihentaime/blogsite/internal/common"
	"github.com/sushihentaime/blogsite/internal/docstore"
)

const (
	msgMissingToken        = "Unauthorized: Token missing or invalid format"
	msgInvalidToken        = "Unauthorized: Invalid token"
	msgEmailMismatch       = "Forbidden: Email mismatch"
	msgWishlistDeleteOwner = "Forbidden: You can only delete your own wishlist item"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	err := app.writeJSON(w, status, envelope{"error": message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "resource not found")
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.writeErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) forbiddenErrorResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.writeErrorResponse(w, r, http.StatusForbidden, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded")
}

// serviceErrorResponse converts an error returned by the access layer or a
// service into the matching HTTP response. Anything unrecognised is a 500.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr       *access.AuthError
		validationErr common.ValidationError
	)

	switch {
	case errors.As(err, &authErr):
		message := msgMissingToken
		if authErr.Reason == access.ReasonInvalidToken {
			message = msgInvalidToken
		}
		app.unauthorizedErrorResponse(w, r, message)
	case errors.Is(err, access.ErrForbidden):
		app.forbiddenErrorResponse(w, r, msgEmailMismatch)
	case errors.Is(err, blogservice.ErrRecordNotFound), errors.Is(err, docstore.ErrNoDocuments):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, docstore.ErrInvalidID):
		app.badRequestErrorResponse(w, r, errInvalidIDParam)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
