// Package errors holds the sentinel errors shared across features. Feature
// packages wrap them so handlers can branch with errors.Is.
package errors

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDuplicate    = errors.New("resource already exists")
	ErrValidation   = errors.New("validation failed")
)
