package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every store and service. Adapters wrap these with
// context; callers match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrMissingReference = errors.New("missing reference")
	ErrReferenced       = errors.New("still referenced")
	ErrValidation       = errors.New("validation failed")

	ErrCityNotFound     = errors.New("city not found")
	ErrSegmentNotFound  = errors.New("segment not found")
	ErrNoRouteAvailable = errors.New("no route available")
	ErrBrokenChain      = errors.New("itinerary chain broken")
)

// Invalidf builds a validation error carrying a human readable reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
