package veloxext

import (
	"errors"
	"fmt"
)

// Standard sentinel errors shared by the extension packages.
var (
	// ErrConfiguration is returned when the entity configuration cannot be
	// bootstrapped, e.g. a soft-deletion property declared on a subclass.
	ErrConfiguration = errors.New("veloxext: invalid configuration")

	// ErrUnknownEntity is returned when an entity name is not present in
	// the metadata graph.
	ErrUnknownEntity = errors.New("veloxext: unknown entity")

	// ErrUnsupported is returned when a query shape cannot be handled by
	// the component it was handed to.
	ErrUnsupported = errors.New("veloxext: unsupported")
)

// ConfigurationError is a fatal bootstrap error tied to an entity and
// one of its properties.
type ConfigurationError struct {
	Entity   string // Entity name
	Property string // Offending property (if applicable)
	Message  string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("veloxext: %s (entity: %s, property: %s)", e.Message, e.Entity, e.Property)
	}
	return fmt.Sprintf("veloxext: %s (entity: %s)", e.Message, e.Entity)
}

// Is reports whether the target error matches ConfigurationError.
// This allows errors.Is(cfgErr, ErrConfiguration) to return true.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewConfigurationError returns a new ConfigurationError.
func NewConfigurationError(entity, property, message string) *ConfigurationError {
	return &ConfigurationError{Entity: entity, Property: property, Message: message}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}

// UnknownEntityError is returned when a lookup by entity name fails.
type UnknownEntityError struct {
	name string
}

// Error returns the error string.
func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("veloxext: unknown entity %q", e.name)
}

// Is reports whether the target error matches UnknownEntityError.
func (e *UnknownEntityError) Is(err error) bool {
	return err == ErrUnknownEntity
}

// Name returns the entity name that was looked up.
func (e *UnknownEntityError) Name() string {
	return e.name
}

// NewUnknownEntityError returns a new UnknownEntityError.
func NewUnknownEntityError(name string) *UnknownEntityError {
	return &UnknownEntityError{name: name}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Entity type being queried
	Store  string // Logical store the query was routed to
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Store != "" {
		return fmt.Sprintf("veloxext: querying %s (store %s): %v", e.Entity, e.Store, e.Err)
	}
	return fmt.Sprintf("veloxext: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, store string, err error) *QueryError {
	return &QueryError{Entity: entity, Store: store, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}
