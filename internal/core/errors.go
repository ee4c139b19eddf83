package core

import "errors"

// Sentinel errors the repository reports; callers discriminate with
// errors.Is and map them onto wire error codes.
var (
	// ErrNotFound means a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness or foreign-key rule would be
	// violated by the requested write.
	ErrConflict = errors.New("constraint violation")

	// ErrInvalid means client-supplied input fails domain validation.
	ErrInvalid = errors.New("invalid input")
)
