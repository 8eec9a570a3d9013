package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed or physically impossible input
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration is returned when admin reference data is inconsistent
	ErrConfiguration = errors.New("configuration error")

	// ErrConflict is returned for uniqueness violations and lost exclusivity races
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrUSDANotConfigured is returned when an import is attempted without an API key
	ErrUSDANotConfigured = errors.New("USDA import not configured")
)

// Error carries the failing entity and key so callers can build a precise message.
// errors.Is matches it against its Kind sentinel.
type Error struct {
	Kind   error
	Entity string
	ID     string
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Entity != "" {
		msg += ": " + e.Entity
		if e.ID != "" {
			msg += " " + fmt.Sprintf("%q", e.ID)
		}
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput builds an ErrInvalidInput error for entity/id.
func InvalidInput(entity, id, field, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidInput, Entity: entity, ID: id, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Configuration builds an ErrConfiguration error for entity/id.
func Configuration(entity, id, format string, args ...any) *Error {
	return &Error{Kind: ErrConfiguration, Entity: entity, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds an ErrConflict error for entity/id.
func Conflict(entity, id, format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Entity: entity, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound error for entity/id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}
