package transform

import "fmt"

// CoercionError reports a primitive whose text does not parse as the kind
// its schema declares.
type CoercionError struct {
	Path  string
	Type  string
	Value string
	Err   error
}

// Error implements the error interface for CoercionError.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("property %s: cannot coerce %q to %s: %v", e.Path, e.Value, e.Type, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *CoercionError) Unwrap() error {
	return e.Err
}
