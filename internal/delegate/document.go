package delegate

import (
	"fmt"
	"sort"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"stitchql/internal/selection"
)

// buildDocument renders a delegation request as an executable document.
// Argument values are never serialized into the document: each one becomes
// a variable reference typed from the target root field's argument
// definition, and the values travel in the returned variable map. Caller
// variables referenced by the forwarded selection are carried through;
// delegation variables are renamed on collision.
func buildDocument(req Request) (*ast.Document, map[string]interface{}, error) {
	fieldDef, ok := req.Subschema.RootField(string(req.Operation), req.Field)
	if !ok {
		return nil, nil, fmt.Errorf("subschema %q has no %s field %q", req.Subschema.Name(), req.Operation, req.Field)
	}

	argDefs := make(map[string]*graphql.Argument, len(fieldDef.Args))
	for _, arg := range fieldDef.Args {
		if arg != nil {
			argDefs[arg.Name()] = arg
		}
	}

	taken := make(map[string]bool, len(req.CallerVariableDefs))
	for _, def := range req.CallerVariableDefs {
		if def != nil && def.Variable != nil && def.Variable.Name != nil {
			taken[def.Variable.Name.Value] = true
		}
	}

	names := make([]string, 0, len(req.Args))
	for name := range req.Args {
		names = append(names, name)
	}
	sort.Strings(names)

	variableDefs := append([]*ast.VariableDefinition{}, req.CallerVariableDefs...)
	values := make(map[string]interface{}, len(req.Args)+len(req.CallerVariables))
	for name, value := range req.CallerVariables {
		values[name] = value
	}

	fieldArgs := make([]*ast.Argument, 0, len(names))
	for _, name := range names {
		argDef, ok := argDefs[name]
		if !ok {
			return nil, nil, fmt.Errorf("field %q on subschema %q has no argument %q", req.Field, req.Subschema.Name(), name)
		}
		typeNode, err := astInputType(argDef.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %q of %s.%s: %w", name, req.Subschema.Name(), req.Field, err)
		}

		varName := name
		for i := 2; taken[varName]; i++ {
			varName = fmt.Sprintf("%s_%d", name, i)
		}
		taken[varName] = true

		variableDefs = append(variableDefs, ast.NewVariableDefinition(&ast.VariableDefinition{
			Variable: ast.NewVariable(&ast.Variable{Name: ast.NewName(&ast.Name{Value: varName})}),
			Type:     typeNode,
		}))
		fieldArgs = append(fieldArgs, ast.NewArgument(&ast.Argument{
			Name:  ast.NewName(&ast.Name{Value: name}),
			Value: ast.NewVariable(&ast.Variable{Name: ast.NewName(&ast.Name{Value: varName})}),
		}))
		values[varName] = req.Args[name]
	}

	rootField := ast.NewField(&ast.Field{
		Name:         ast.NewName(&ast.Name{Value: req.Field}),
		Arguments:    fieldArgs,
		SelectionSet: selection.ToAST(req.Selection),
	})

	operation := ast.NewOperationDefinition(&ast.OperationDefinition{
		Operation:           string(req.Operation),
		VariableDefinitions: variableDefs,
		SelectionSet: ast.NewSelectionSet(&ast.SelectionSet{
			Selections: []ast.Selection{rootField},
		}),
	})

	return ast.NewDocument(&ast.Document{Definitions: []ast.Node{operation}}), values, nil
}

// astInputType renders an input type as a type reference node.
func astInputType(t graphql.Input) (ast.Type, error) {
	switch typed := t.(type) {
	case *graphql.NonNull:
		inner, ok := typed.OfType.(graphql.Input)
		if !ok {
			return nil, fmt.Errorf("non-null wraps a non-input type %v", typed.OfType)
		}
		node, err := astInputType(inner)
		if err != nil {
			return nil, err
		}
		return ast.NewNonNull(&ast.NonNull{Type: node}), nil
	case *graphql.List:
		inner, ok := typed.OfType.(graphql.Input)
		if !ok {
			return nil, fmt.Errorf("list wraps a non-input type %v", typed.OfType)
		}
		node, err := astInputType(inner)
		if err != nil {
			return nil, err
		}
		return ast.NewList(&ast.List{Type: node}), nil
	default:
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("input type has no name")
		}
		return ast.NewNamed(&ast.Named{Name: ast.NewName(&ast.Name{Value: t.Name()})}), nil
	}
}
