package database

import "errors"

var (
	// ErrNotFound is returned when a row lookup matches nothing.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification is returned when a versioned update
	// loses the compare-and-swap race.
	ErrConcurrentModification = errors.New("record was modified concurrently")
)
