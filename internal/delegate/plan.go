package delegate

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"stitchql/internal/forwarding"
	"stitchql/internal/registry"
	"stitchql/internal/selection"
)

// Request is one planned delegation, ready for dispatch.
type Request struct {
	Subschema *registry.Subschema
	Operation Operation
	Field     string
	Args      map[string]interface{}
	Selection *selection.Set
	// Via mirrors the binding's override field so the dispatcher unwraps
	// the result one level.
	Via string
	// Path locates the extension field in the originating response; every
	// downstream error is re-pathed relative to it.
	Path []interface{}
	// CallerVariableDefs and CallerVariables carry the originating
	// operation's variables through, since the forwarded selection may
	// reference them.
	CallerVariableDefs []*ast.VariableDefinition
	CallerVariables    map[string]interface{}
}

// Plan builds a delegation request from a binding and a forwarded
// selection. Pure: all blocking happens in Dispatch.
func Plan(b Binding, sub *registry.Subschema, fwd *forwarding.Forwarded, parent map[string]interface{}, info graphql.ResolveInfo) Request {
	sel := fwd.Selection
	if b.ReturnType != "" {
		sel = selection.WrapFragment(b.ReturnType, sel)
	}
	if b.Via != "" {
		sel = selection.WrapField(b.Via, sel)
	}

	var callerDefs []*ast.VariableDefinition
	if op, ok := info.Operation.(*ast.OperationDefinition); ok && op != nil {
		callerDefs = op.VariableDefinitions
	}

	var path []interface{}
	if info.Path != nil {
		path = info.Path.AsArray()
	}

	return Request{
		Subschema:          sub,
		Operation:          b.OperationKind(),
		Field:              b.Field,
		Args:               b.Arguments(parent, fwd.Required),
		Selection:          sel,
		Via:                b.Via,
		Path:               path,
		CallerVariableDefs: callerDefs,
		CallerVariables:    info.VariableValues,
	}
}
