// Package apperr defines application error values shared across layers.
package apperr

import "errors"

// ErrNotFound indicates a requested resource does not exist.
var ErrNotFound = errors.New("not found")
