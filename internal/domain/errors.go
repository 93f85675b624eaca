package domain

import "errors"

// Common domain errors
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource already exists")
)

// Candidature lifecycle errors
var (
	ErrInvalidTransition     = errors.New("invalid candidature status transition")
	ErrInterviewDateRequired = errors.New("interview date is required")
	ErrInvalidTimezone       = errors.New("invalid timezone")
)
