package localstore

import "errors"

var (
	// ErrNotFound is the "no such record" signal returned by lookups and
	// updates. Callers render an empty/not-found state on it.
	ErrNotFound = errors.New("record not found")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidPartial     = errors.New("partial update does not fit the record")
)
