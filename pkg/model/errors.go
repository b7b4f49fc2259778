package model

import (
	"errors"
	"fmt"
)

// Definition errors. All of them wrap ErrInvalidDefinition.
var (
	ErrInvalidDefinition  = errors.New("invalid interface definition")
	ErrMissingField       = fmt.Errorf("%w: missing required field", ErrInvalidDefinition)
	ErrInvalidVersion     = fmt.Errorf("%w: invalid version", ErrInvalidDefinition)
	ErrDuplicateMapping   = fmt.Errorf("%w: duplicated mapping", ErrInvalidDefinition)
	ErrInvalidEndpoint    = fmt.Errorf("%w: invalid endpoint", ErrInvalidDefinition)
	ErrInvalidType        = fmt.Errorf("%w: invalid type", ErrInvalidDefinition)
	ErrInvalidAggregation = fmt.Errorf("%w: invalid aggregation", ErrInvalidDefinition)
)

// Validation errors. Returned wrapped in a *ValidationError.
var (
	ErrPathNotDeclared   = errors.New("path not declared in interface")
	ErrPayloadNotObject  = errors.New("payload is not an object")
	ErrMissingMember     = errors.New("path of interface not in the payload")
	ErrTypeMismatch      = errors.New("value does not match mapping type")
	ErrOutOfRange        = errors.New("value out of range")
	ErrTimestampRequired = errors.New("explicit timestamp required")
	ErrUnsetNotAllowed   = errors.New("unset not allowed")
	ErrPathMismatch      = errors.New("path does not match endpoint")
)

// ErrInterfaceNotFound is returned by lookups for a path the interface does
// not declare. It does not wrap any validation kind.
var ErrInterfaceNotFound = errors.New("interface not found")

// ValidationError reports why a payload was rejected.
type ValidationError struct {
	// Interface is the name of the interface that rejected the payload.
	Interface string

	// Path is the concrete path the payload was addressed to.
	Path string

	// Kind is one of the validation sentinels (ErrPathNotDeclared, ...).
	Kind error

	// Cause is a human-readable description.
	Cause string
}

func (e *ValidationError) Error() string {
	if e.Cause == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Cause)
}

// Unwrap returns the validation sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func validationErrorf(iface, path string, kind error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Interface: iface,
		Path:      path,
		Kind:      kind,
		Cause:     fmt.Sprintf(format, args...),
	}
}

// AsValidationError returns the *ValidationError in err's chain, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
