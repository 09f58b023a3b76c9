package database

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported database provider")
	ErrConnectionFailed    = errors.New("failed to connect to database")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
)

func notFound(kind, name string) error {
	return fmt.Errorf("%s %s: %w", kind, name, ErrNotFound)
}

func conflict(kind, name string) error {
	return fmt.Errorf("%s %s: %w", kind, name, ErrConflict)
}

// IsNotFound reports whether err means the object does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
