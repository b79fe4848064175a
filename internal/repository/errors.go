package repository

import "errors"

// ErrNotFound indicates a referenced team or record does not exist.
var ErrNotFound = errors.New("repository: not found")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
