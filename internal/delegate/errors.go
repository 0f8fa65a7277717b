// Package delegate plans and executes sub-requests against target
// subschemas on behalf of extension fields, and re-paths the resulting
// errors so they stay addressable from the root of the original query.
package delegate

import (
	"fmt"
	"strings"
)

// FieldError is one response error with its absolute response path.
type FieldError struct {
	Message string        `json:"message"`
	Path    []interface{} `json:"path,omitempty"`
}

// DelegationError wraps the field errors a nested execution returned. Each
// wrapped error already carries its re-pathed absolute path.
type DelegationError struct {
	Subschema string
	Field     string
	Errors    []FieldError
}

func (e *DelegationError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		messages = append(messages, fe.Message)
	}
	return fmt.Sprintf("delegation to %s.%s failed: %s", e.Subschema, e.Field, strings.Join(messages, "; "))
}

// CancellationError reports an outstanding delegation that was cut short by
// the originating request's cancellation or timeout.
type CancellationError struct {
	Subschema string
	Field     string
	Cause     error
}

func (e *CancellationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("delegation to %s.%s cancelled: %s", e.Subschema, e.Field, e.Cause)
	}
	return fmt.Sprintf("delegation to %s.%s cancelled", e.Subschema, e.Field)
}

func (e *CancellationError) Unwrap() error {
	return e.Cause
}
