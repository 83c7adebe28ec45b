package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrOrderExists is returned when an order for the same checkout session is already stored.
	ErrOrderExists = errors.New("order already exists for session")
)
