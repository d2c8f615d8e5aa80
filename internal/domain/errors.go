package domain

import "errors"

// Sentinel errors shared by repositories and services.
// Adapters map them to transport status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
