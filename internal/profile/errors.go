package profile

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoValidFields = errors.New("no valid fields provided for update")

// ProtectedFieldsError rejects the whole update when the payload touches any
// immutable column. It names every offender so the client can fix them all at
// once.
type ProtectedFieldsError struct {
	Fields []string
}

func (e *ProtectedFieldsError) Error() string {
	return fmt.Sprintf("cannot update protected fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidJSONFieldError marks a structured-collection field that arrived as a
// scalar instead of an object or array.
type InvalidJSONFieldError struct {
	Field string
}

func (e *InvalidJSONFieldError) Error() string {
	return fmt.Sprintf("field %q must be a valid JSON object or array", e.Field)
}
