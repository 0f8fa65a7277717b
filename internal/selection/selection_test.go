package selection

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/printer"
	"github.com/graphql-go/graphql/language/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSelection(t *testing.T, query string) (*ast.SelectionSet, map[string]ast.Definition) {
	t.Helper()
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(query)}),
	})
	require.NoError(t, err)

	fragments := map[string]ast.Definition{}
	var selectionSet *ast.SelectionSet
	for _, def := range doc.Definitions {
		switch node := def.(type) {
		case *ast.OperationDefinition:
			selectionSet = node.SelectionSet
		case *ast.FragmentDefinition:
			fragments[node.Name.Value] = node
		}
	}
	require.NotNil(t, selectionSet)
	return selectionSet, fragments
}

func TestFromASTFieldsAndAliases(t *testing.T) {
	selectionSet, fragments := parseSelection(t, `{ id renamed: name nested { leaf } }`)
	set := FromAST(selectionSet, fragments)

	require.Len(t, set.Fields, 3)
	assert.Equal(t, "id", set.Fields[0].Key())
	assert.Equal(t, "renamed", set.Fields[1].Key())
	assert.Equal(t, "name", set.Fields[1].Name)
	require.NotNil(t, set.Fields[2].Selection)
	assert.True(t, set.Fields[2].Selection.HasField("leaf"))
}

func TestFromASTInlinesFragmentSpreads(t *testing.T) {
	selectionSet, fragments := parseSelection(t, `
		{ ...parts }
		fragment parts on Thing { id name }
	`)
	set := FromAST(selectionSet, fragments)

	require.Len(t, set.Fragments, 1)
	assert.Equal(t, "Thing", set.Fragments[0].TypeCondition)
	assert.True(t, set.Fragments[0].Selection.HasField("id"))
	assert.True(t, set.Fragments[0].Selection.HasField("name"))
}

func TestFromASTSkipsCyclicSpreads(t *testing.T) {
	selectionSet, fragments := parseSelection(t, `
		{ ...a }
		fragment a on Thing { id ...b }
		fragment b on Thing { ...a name }
	`)
	set := FromAST(selectionSet, fragments)

	require.Len(t, set.Fragments, 1)
	inner := set.Fragments[0].Selection
	assert.True(t, inner.HasField("id"))
	assert.True(t, inner.HasField("name"))
}

func TestHasFieldSeesThroughFragments(t *testing.T) {
	selectionSet, fragments := parseSelection(t, `{ ... on Thing { id } }`)
	set := FromAST(selectionSet, fragments)

	assert.True(t, set.HasField("id"))
	assert.False(t, set.HasField("name"))
}

func TestToASTRoundTrip(t *testing.T) {
	selectionSet, fragments := parseSelection(t, `{ id renamed: name nested { leaf } ... on Other { extra } }`)
	set := FromAST(selectionSet, fragments)

	rendered := printer.Print(ToAST(set)).(string)
	assert.Contains(t, rendered, "id")
	assert.Contains(t, rendered, "renamed: name")
	assert.Contains(t, rendered, "leaf")
	assert.Contains(t, rendered, "... on Other")
}

func TestToASTEmptySet(t *testing.T) {
	assert.Nil(t, ToAST(&Set{}))
	assert.Nil(t, ToAST(nil))
}

func TestWrapField(t *testing.T) {
	inner := &Set{Fields: []Field{{Name: "id"}}}
	wrapped := WrapField("node", inner)

	require.Len(t, wrapped.Fields, 1)
	assert.Equal(t, "node", wrapped.Fields[0].Name)
	assert.Same(t, inner, wrapped.Fields[0].Selection)
}

func TestWrapFragment(t *testing.T) {
	inner := &Set{Fields: []Field{{Name: "id"}}}
	wrapped := WrapFragment("Offering", inner)

	require.Len(t, wrapped.Fragments, 1)
	assert.Equal(t, "Offering", wrapped.Fragments[0].TypeCondition)
	assert.Same(t, inner, wrapped.Fragments[0].Selection)
}
