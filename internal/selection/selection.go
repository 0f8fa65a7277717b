// Package selection models requested selection sets structurally so they
// can be forwarded across schema boundaries without ever round-tripping
// through query text. Fragment spreads are inlined during conversion; the
// structural form is rendered back to AST nodes for nested execution.
package selection

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Field is one requested field with its arguments and nested selection.
// Arguments are carried as AST values; runtime inputs referenced by them
// travel as variables alongside the document.
type Field struct {
	Alias     string
	Name      string
	Arguments []*ast.Argument
	Selection *Set
}

// Key returns the response key the field resolves under.
func (f Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Fragment is an inlined fragment with an optional type condition.
type Fragment struct {
	TypeCondition string
	Selection     *Set
}

// Set is a structural selection set.
type Set struct {
	Fields    []Field
	Fragments []Fragment
}

// IsEmpty reports whether the set selects nothing.
func (s *Set) IsEmpty() bool {
	return s == nil || (len(s.Fields) == 0 && len(s.Fragments) == 0)
}

// HasField reports whether a field with the given name is selected at the
// top level of the set, including inside inlined fragments.
func (s *Set) HasField(name string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	for _, fr := range s.Fragments {
		if fr.Selection.HasField(name) {
			return true
		}
	}
	return false
}

// WrapField nests the set one level beneath a single field. Used when a
// binding routes the delegation through an override field whose result is
// unwrapped again after dispatch.
func WrapField(name string, inner *Set) *Set {
	return &Set{Fields: []Field{{Name: name, Selection: inner}}}
}

// WrapFragment wraps the set in an inline fragment on a concrete type so a
// downstream executor resolves it against the right shape.
func WrapFragment(typeName string, inner *Set) *Set {
	return &Set{Fragments: []Fragment{{TypeCondition: typeName, Selection: inner}}}
}

// FromResolveInfo converts the selection requested beneath the currently
// resolving field. Multiple field ASTs for the same response key are merged.
func FromResolveInfo(info graphql.ResolveInfo) *Set {
	out := &Set{}
	for _, fieldAST := range info.FieldASTs {
		if fieldAST == nil || fieldAST.SelectionSet == nil {
			continue
		}
		part := FromAST(fieldAST.SelectionSet, info.Fragments)
		out.Fields = append(out.Fields, part.Fields...)
		out.Fragments = append(out.Fragments, part.Fragments...)
	}
	return out
}

// FromAST converts an AST selection set, inlining fragment spreads via the
// fragment map. Unknown or cyclic spreads are skipped.
func FromAST(selectionSet *ast.SelectionSet, fragments map[string]ast.Definition) *Set {
	return fromAST(selectionSet, fragments, map[string]bool{})
}

func fromAST(selectionSet *ast.SelectionSet, fragments map[string]ast.Definition, inFlight map[string]bool) *Set {
	out := &Set{}
	if selectionSet == nil {
		return out
	}
	for _, sel := range selectionSet.Selections {
		switch node := sel.(type) {
		case *ast.Field:
			if node == nil || node.Name == nil {
				continue
			}
			field := Field{
				Name:      node.Name.Value,
				Arguments: node.Arguments,
			}
			if node.Alias != nil {
				field.Alias = node.Alias.Value
			}
			if node.SelectionSet != nil {
				field.Selection = fromAST(node.SelectionSet, fragments, inFlight)
			}
			out.Fields = append(out.Fields, field)
		case *ast.InlineFragment:
			if node == nil {
				continue
			}
			fragment := Fragment{Selection: fromAST(node.SelectionSet, fragments, inFlight)}
			if node.TypeCondition != nil && node.TypeCondition.Name != nil {
				fragment.TypeCondition = node.TypeCondition.Name.Value
			}
			out.Fragments = append(out.Fragments, fragment)
		case *ast.FragmentSpread:
			if node == nil || node.Name == nil {
				continue
			}
			name := node.Name.Value
			if inFlight[name] {
				continue
			}
			def, ok := fragments[name].(*ast.FragmentDefinition)
			if !ok || def == nil {
				continue
			}
			inFlight[name] = true
			fragment := Fragment{Selection: fromAST(def.SelectionSet, fragments, inFlight)}
			if def.TypeCondition != nil && def.TypeCondition.Name != nil {
				fragment.TypeCondition = def.TypeCondition.Name.Value
			}
			delete(inFlight, name)
			out.Fragments = append(out.Fragments, fragment)
		}
	}
	return out
}

// ToAST renders the structural set back to AST nodes.
func ToAST(s *Set) *ast.SelectionSet {
	if s.IsEmpty() {
		return nil
	}
	selections := make([]ast.Selection, 0, len(s.Fields)+len(s.Fragments))
	for _, f := range s.Fields {
		node := &ast.Field{
			Name:      ast.NewName(&ast.Name{Value: f.Name}),
			Arguments: f.Arguments,
		}
		if f.Alias != "" {
			node.Alias = ast.NewName(&ast.Name{Value: f.Alias})
		}
		if sub := ToAST(f.Selection); sub != nil {
			node.SelectionSet = sub
		}
		selections = append(selections, ast.NewField(node))
	}
	for _, fr := range s.Fragments {
		node := &ast.InlineFragment{
			SelectionSet: ToAST(fr.Selection),
		}
		if fr.TypeCondition != "" {
			node.TypeCondition = ast.NewNamed(&ast.Named{Name: ast.NewName(&ast.Name{Value: fr.TypeCondition})})
		}
		selections = append(selections, ast.NewInlineFragment(node))
	}
	return ast.NewSelectionSet(&ast.SelectionSet{Selections: selections})
}
