package db

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create collides with an existing document.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrInvalidCursor is returned when a pagination cursor names an unknown document.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)
