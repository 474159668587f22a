package server

import (
	"errors"
	"net/http"

	"github.com/spigell/interview-coach/internal/ingestion"
	"github.com/spigell/interview-coach/internal/session"
)

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// HTTPStatus maps an error to the response status.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		parseErr      *ingestion.ParseError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
