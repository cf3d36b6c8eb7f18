package storage

import (
	"errors"
	"fmt"

	"tokenLauncher/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a record fails validation before it is written.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidateRecord checks the columns that may not be null.
func ValidateRecord(record *model.TokenRecord) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidInput)
	}
	if record.Name == "" || record.Symbol == "" {
		return fmt.Errorf("%w: name and symbol are required", ErrInvalidInput)
	}
	if record.ImageURL == "" {
		return fmt.Errorf("%w: image url is required", ErrInvalidInput)
	}
	return nil
}
