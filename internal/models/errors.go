package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the inference pipeline. Load errors are fatal at
// startup; the others are per request and are never retried.
var (
	ErrModelLoad         = errors.New("model load failed")
	ErrStoreLoad         = errors.New("embedding store load failed")
	ErrInvalidImage      = errors.New("invalid image")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// WrapError tags err with kind and the failing operation so that both
// errors.Is(err, kind) and errors.Is(err, cause) hold.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// NewError builds an error of the given kind from a message.
func NewError(kind error, operation, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", operation, kind, fmt.Sprintf(format, args...))
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
