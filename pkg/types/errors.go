package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrInvalidLineRange = errors.New("start line must be before or equal to end line")
	ErrInvalidScore     = errors.New("score cannot be negative")
)
