package service

import "errors"

// Sentinel errors returned by every service. Callers match them with
// errors.Is; the HTTP layer maps each one to a status code.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream failure")
)
