package extinguisher

import "errors"

var (
	// ErrNotFound indicates an unknown unit or inspection record.
	ErrNotFound = errors.New("extinguisher: not found")
	// ErrAlreadyExists indicates an identification number collision.
	ErrAlreadyExists = errors.New("extinguisher: already exists")
	// ErrInvalidInput indicates a malformed request.
	ErrInvalidInput = errors.New("extinguisher: invalid input")
)
