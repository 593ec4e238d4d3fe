package errors

import "errors"

var (
	ErrNotFound = errors.New("staff not found")

	ErrInvalidEvent = errors.New("invalid staff event")
)
