package query

import (
	"context"
	"errors"
	"net/http"

	"tovakustatus-backend/internal/client/remote"
)

// ErrUnavailable is returned when a read failed and neither cached data, a
// snapshot nor a fallback could stand in for it. Callers render empty state.
var ErrUnavailable = errors.New("query: data unavailable")

// retryable reports whether a failed read is worth another attempt.
// Client errors are final except request timeout and rate limiting.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	status := remote.StatusOf(err)
	if status >= 400 && status < 500 {
		return status == http.StatusRequestTimeout || status == http.StatusTooManyRequests
	}
	return true
}
