package newsletter

import (
	"errors"
	"net/http"
)

var (
	ErrAlreadySubscribed = errors.New("email is already subscribed")
	ErrValidation        = errors.New("validation failed")
)

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAlreadySubscribed):
		return "ALREADY_SUBSCRIBED"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
