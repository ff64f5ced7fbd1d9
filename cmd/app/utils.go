package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/sushihentaime/blogsite/internal/docstore"
)

var errInvalidIDParam = errors.New("invalid ID parameter")

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

// parseDocument decodes a request body holding exactly one JSON object.
func (app *application) parseDocument(w http.ResponseWriter, r *http.Request) (docstore.Document, error) {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)

	var doc docstore.Document

	err := decoder.Decode(&doc)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return nil, fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return nil, fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return nil, errors.New("request body must be a JSON object")
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body must not be empty")
		case errors.As(err, &maxBytesError):
			return nil, fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return nil, err
		}
	}

	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return nil, errors.New("request body must only contain a single JSON value")
	}

	if doc == nil {
		return nil, errors.New("request body must be a JSON object")
	}

	return doc, nil
}

func (app *application) readIDParam(r *http.Request, key string) (uuid.UUID, error) {
	params := httprouter.ParamsFromContext(r.Context())

	return docstore.ParseID(params.ByName(key))
}
