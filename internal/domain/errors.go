package domain

import "errors"

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrUnknownAction          = errors.New("unknown action")
	ErrInvalidValue           = errors.New("invalid value")
)
