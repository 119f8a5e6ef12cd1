package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
	ErrStore        = errors.New("store failure")

	// Store-level outcomes. Services translate these into the errors above.
	ErrDuplicate       = errors.New("duplicate document")
	ErrElementExists   = errors.New("element already present")
	ErrElementNotFound = errors.New("element not present")
)
