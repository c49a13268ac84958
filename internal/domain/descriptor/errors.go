package descriptor

import "errors"

var (
	// ErrDescriptorNotFound indicates no descriptor is stored under the identifier.
	ErrDescriptorNotFound = errors.New("descriptor not found")
	// ErrAlreadyExists indicates the identifier is already registered for the tenant.
	ErrAlreadyExists = errors.New("descriptor already exists")
	// ErrInvalidInput indicates invalid descriptor input.
	ErrInvalidInput = errors.New("invalid descriptor input")
	// ErrUseCountExhausted indicates the use count is already the largest int.
	ErrUseCountExhausted = errors.New("use count cannot be incremented")
)
