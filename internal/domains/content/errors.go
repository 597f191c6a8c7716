package content

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("content not found")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidStatus = errors.New("status must be upcoming, ongoing or past")
	ErrNotViewable   = errors.New("content type has no view counter")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrInvalidStatus):
		return "INVALID_STATUS"
	case errors.Is(err, ErrNotViewable):
		return "NOT_VIEWABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotViewable):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
