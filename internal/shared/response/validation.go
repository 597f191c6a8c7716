package response

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationDetails returns the per-field messages of an ozzo-validation
// failure anywhere in err's chain, or nil.
func ValidationDetails(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}
