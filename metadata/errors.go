package metadata

import (
	"errors"
	"strings"
)

// ErrInvalidSchema indicates an entity metadata definition error.
var ErrInvalidSchema = errors.New("veloxext: invalid entity metadata")

// SchemaError represents an entity metadata definition error.
type SchemaError struct {
	Entity   string // Entity name
	Property string // Property name (if applicable)
	Message  string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("veloxext: metadata error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(entity, property, message string) *SchemaError {
	return &SchemaError{
		Entity:   entity,
		Property: property,
		Message:  message,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}
