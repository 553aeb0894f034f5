package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks construction-time wiring that does not match
	// the expected schema.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingInput marks a call whose input map lacks the question key.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidConfiguration marks call-time state that should have been
	// rejected at construction.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
