package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadySubmitted = errors.New("challenge already submitted")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("too many concurrent updates")
)
