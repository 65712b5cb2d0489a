package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrUnsupportedType indicates a declared type outside the known
	// scalar, enumeration and composite sets. This is fatal: continuing
	// would emit code referencing a type that does not exist in the
	// generated output.
	ErrUnsupportedType = errors.New("cocogen: unsupported declared type")
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("cocogen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("cocogen: missing configuration")
)

// UnsupportedTypeError reports a declared type reference that names a
// primitive or composite outside the known finite sets.
type UnsupportedTypeError struct {
	Property string // property or catalog type the reference appears on
	Declared string // the offending declared type text
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("cocogen: unsupported declared type %q on %q", e.Declared, e.Property)
	}
	return fmt.Sprintf("cocogen: unsupported declared type %q", e.Declared)
}

// Is reports whether the target matches the sentinel error for UnsupportedTypeError.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// NewUnsupportedTypeError creates a new UnsupportedTypeError.
func NewUnsupportedTypeError(property, declared string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Property: property, Declared: declared}
}

// SchemaError represents a schema definition error.
type SchemaError struct {
	Property string // property name (if applicable)
	Entity   string // entity type name (if applicable)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("cocogen: schema error")
	if e.Property != "" {
		b.WriteString(" on property ")
		b.WriteString(e.Property)
	}
	if e.Entity != "" {
		b.WriteString(" entity ")
		b.WriteString(e.Entity)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(property, entity, message string, cause error) *SchemaError {
	return &SchemaError{Property: property, Entity: entity, Message: message, Cause: cause}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("cocogen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("cocogen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}
