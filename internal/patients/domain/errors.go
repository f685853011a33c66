package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors returned by the registry match one of these
// through errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("patient not found")
)

// Fields named by InvalidArgumentError.
const (
	FieldName = "name"
	FieldID   = "id"
)

// InvalidArgumentError reports an empty name or identifier.
type InvalidArgumentError struct {
	Field string
}

func (e *InvalidArgumentError) Error() string {
	switch e.Field {
	case FieldID:
		return "Patient ID cannot be empty"
	case FieldName:
		return "Name cannot be empty"
	default:
		return fmt.Sprintf("%s cannot be empty", e.Field)
	}
}

// Is matches ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// NotFoundError reports a lookup of an identifier that is not registered.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No patient found with ID '%s'", e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsInvalidArgument reports whether err is an InvalidArgument failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
