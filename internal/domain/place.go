package domain

import (
	"strings"
	"time"
)

// Place is a uniquely named location referenced by routes and notifications.
// Places are created on demand and never renamed.
type Place struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NormalizePlaceName trims surrounding whitespace and collapses inner runs
// of spaces so "  Mary   Welaýat " and "Mary Welaýat" resolve to one Place.
func NormalizePlaceName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidatePlaceName rejects names that normalize to empty or are too long.
func ValidatePlaceName(field, name string) error {
	n := NormalizePlaceName(name)
	if n == "" {
		return NewFieldError(field, "is required")
	}
	if len([]rune(n)) > 200 {
		return NewFieldError(field, "must be at most 200 characters")
	}
	return nil
}
