// Package forwarding declares which parent-object attributes a delegation
// needs and computes the selection and inputs forwarded downstream. Rules
// are parsed once at extension-declaration time; the forward step itself is
// pure and runs per field resolution.
package forwarding

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"

	"stitchql/internal/selection"
)

// Rule names the parent attributes that must have been fetched before an
// extension field can delegate, e.g. "{ offeringId }". Nested selections
// are kept so they are injected into the parent's delegated selection.
type Rule struct {
	raw       string
	required  []string
	selection *selection.Set
}

// ParseRule parses the compact rule syntax. The body is a plain selection
// set, so the regular query parser handles it; fragment spreads and
// variables are rejected because a rule has neither.
func ParseRule(raw string) (Rule, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Rule{}, fmt.Errorf("forwarding rule is empty")
	}
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(trimmed),
			Name: "forwarding rule",
		}),
	})
	if err != nil {
		return Rule{}, fmt.Errorf("invalid forwarding rule %q: %w", raw, err)
	}

	var op *ast.OperationDefinition
	for _, def := range doc.Definitions {
		switch node := def.(type) {
		case *ast.OperationDefinition:
			if op != nil {
				return Rule{}, fmt.Errorf("forwarding rule %q contains multiple selection sets", raw)
			}
			op = node
		default:
			return Rule{}, fmt.Errorf("forwarding rule %q contains a non-selection definition", raw)
		}
	}
	if op == nil || op.SelectionSet == nil || len(op.SelectionSet.Selections) == 0 {
		return Rule{}, fmt.Errorf("forwarding rule %q selects no attributes", raw)
	}
	if op.Operation != ast.OperationTypeQuery || op.Name != nil || len(op.VariableDefinitions) > 0 {
		return Rule{}, fmt.Errorf("forwarding rule %q must be a bare selection set", raw)
	}
	if err := rejectSpreads(op.SelectionSet); err != nil {
		return Rule{}, fmt.Errorf("invalid forwarding rule %q: %w", raw, err)
	}

	set := selection.FromAST(op.SelectionSet, nil)
	required := make([]string, 0, len(set.Fields))
	for _, f := range set.Fields {
		required = append(required, f.Name)
	}
	return Rule{raw: trimmed, required: required, selection: set}, nil
}

// MustRule is ParseRule for statically known rules.
func MustRule(raw string) Rule {
	rule, err := ParseRule(raw)
	if err != nil {
		panic(err)
	}
	return rule
}

func rejectSpreads(set *ast.SelectionSet) error {
	if set == nil {
		return nil
	}
	for _, sel := range set.Selections {
		switch node := sel.(type) {
		case *ast.Field:
			if err := rejectSpreads(node.SelectionSet); err != nil {
				return err
			}
		case *ast.InlineFragment:
			if err := rejectSpreads(node.SelectionSet); err != nil {
				return err
			}
		case *ast.FragmentSpread:
			return fmt.Errorf("fragment spreads are not allowed")
		}
	}
	return nil
}

// Required returns the top-level attribute names the rule demands.
func (r Rule) Required() []string {
	return r.required
}

// Selection returns the rule's selection for injection into a parent's
// delegated selection set.
func (r Rule) Selection() *selection.Set {
	return r.selection
}

// IsZero reports whether the rule was never parsed.
func (r Rule) IsZero() bool {
	return r.raw == ""
}

func (r Rule) String() string {
	return r.raw
}
