package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrConflict          = errors.New("domain: conflict")
	ErrUnauthorized      = errors.New("domain: unauthorized")
	ErrForbidden         = errors.New("domain: forbidden")
	ErrInvalidInput      = errors.New("domain: invalid input")
	ErrInvalidTransition = errors.New("domain: invalid state transition")
	ErrTableConflict     = errors.New("domain: table already booked in this window")
	ErrUnknownTable      = errors.New("domain: unknown or inactive table")
)
