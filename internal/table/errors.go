package table

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMount is returned when no presentation adapter is supplied.
	ErrNoMount = errors.New("a mount target is required")
	// ErrNoRows is returned when the row collection is missing.
	ErrNoRows = errors.New("a row collection is required")
	// ErrNoColumns is returned when the column list is empty.
	ErrNoColumns = errors.New("at least one column is required")
	// ErrInvalidColumn is returned for malformed column descriptors.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrDuplicateColumn is returned when two columns share a key.
	ErrDuplicateColumn = errors.New("duplicate column key")
	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid option")
	// ErrDestroyed is returned by every operation on a destroyed table.
	ErrDestroyed = errors.New("table has been destroyed")
)

// ConfigurationError reports a construction failure. No partial instance
// is returned alongside it.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("table: %v", e.Err)
	}
	return fmt.Sprintf("table: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
