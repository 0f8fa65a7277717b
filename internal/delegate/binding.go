package delegate

import (
	"stitchql/internal/forwarding"
)

// Operation is the kind of root operation a delegation executes.
type Operation string

const (
	OperationQuery    Operation = "query"
	OperationMutation Operation = "mutation"
)

// Binding ties an extension field to the root field of another subschema.
type Binding struct {
	// Subschema names the delegation target.
	Subschema string
	// Field is the target root field.
	Field string
	// Operation defaults to query.
	Operation Operation
	// Rule declares the parent attributes required to build the request.
	Rule forwarding.Rule
	// Via optionally routes the delegation through an override field: the
	// forwarded selection is wrapped one level beneath it and the result is
	// unwrapped one level after dispatch.
	Via string
	// ReturnType optionally names the concrete type the forwarded selection
	// resolves against when the target root field's declared type cannot,
	// e.g. when delegating through an unrelated entry point.
	ReturnType string
	// Args maps the parent object to the target root field's arguments.
	// When nil, the rule's required attributes are forwarded by name.
	Args func(parent map[string]interface{}) map[string]interface{}
}

// OperationKind returns the binding's operation, defaulting to query.
func (b Binding) OperationKind() Operation {
	if b.Operation == "" {
		return OperationQuery
	}
	return b.Operation
}

// Arguments builds the downstream argument values for a parent object.
func (b Binding) Arguments(parent, required map[string]interface{}) map[string]interface{} {
	if b.Args != nil {
		return b.Args(parent)
	}
	out := make(map[string]interface{}, len(required))
	for name, value := range required {
		out[name] = value
	}
	return out
}
