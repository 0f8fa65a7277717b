package forwarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchql/internal/selection"
)

// stubTypeInfo maps "Type.field" to extension rules and result type names.
type stubTypeInfo struct {
	rules map[string]Rule
	types map[string]string
}

func (s *stubTypeInfo) ExtensionRule(typeName, fieldName string) (Rule, bool) {
	rule, ok := s.rules[typeName+"."+fieldName]
	return rule, ok
}

func (s *stubTypeInfo) FieldTypeName(typeName, fieldName string) (string, bool) {
	name, ok := s.types[typeName+"."+fieldName]
	return name, ok
}

func fieldNamesOf(set *selection.Set) []string {
	var names []string
	for _, f := range set.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestForwardCollectsRequiredAttributes(t *testing.T) {
	rule := MustRule("{ offeringId }")
	parent := map[string]interface{}{"id": "ent-1", "offeringId": "off-10"}

	fwd, err := Forward(rule, parent, &selection.Set{}, "Offering", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"offeringId": "off-10"}, fwd.Required)
}

func TestForwardMissingAttribute(t *testing.T) {
	rule := MustRule("{ offeringId }")
	path := []interface{}{"ccp", "ccpEntitlement", "offering"}

	_, err := Forward(rule, map[string]interface{}{"id": "ent-1"}, &selection.Set{}, "Offering", nil, path)
	require.Error(t, err)

	missing, ok := err.(*MissingInputError)
	require.True(t, ok)
	assert.Equal(t, "offeringId", missing.Attribute)
	assert.Equal(t, path, missing.Path)
	assert.Contains(t, missing.Error(), "offeringId")
}

func TestForwardNullAttributeIsMissing(t *testing.T) {
	rule := MustRule("{ offeringId }")
	parent := map[string]interface{}{"offeringId": nil}

	_, err := Forward(rule, parent, &selection.Set{}, "Offering", nil, nil)
	require.Error(t, err)
	assert.IsType(t, &MissingInputError{}, err)
}

func TestRewriteReplacesExtensionFieldWithRequirements(t *testing.T) {
	types := &stubTypeInfo{
		rules: map[string]Rule{"Offering.product": MustRule("{ productId }")},
		types: map[string]string{},
	}
	child := &selection.Set{Fields: []selection.Field{
		{Name: "id"},
		{Name: "product", Selection: &selection.Set{Fields: []selection.Field{{Name: "name"}}}},
	}}

	fwd, err := Forward(Rule{}, nil, child, "Offering", types, nil)
	require.NoError(t, err)

	names := fieldNamesOf(fwd.Selection)
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "productId")
	assert.Contains(t, names, "__typename")
	assert.NotContains(t, names, "product")
}

func TestRewriteDoesNotDuplicateAlreadySelectedRequirement(t *testing.T) {
	types := &stubTypeInfo{
		rules: map[string]Rule{"Offering.product": MustRule("{ productId }")},
	}
	child := &selection.Set{Fields: []selection.Field{
		{Name: "productId"},
		{Name: "product", Selection: &selection.Set{Fields: []selection.Field{{Name: "name"}}}},
	}}

	fwd, err := Forward(Rule{}, nil, child, "Offering", types, nil)
	require.NoError(t, err)

	count := 0
	for _, name := range fieldNamesOf(fwd.Selection) {
		if name == "productId" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRewriteRecursesUsingFieldTypes(t *testing.T) {
	types := &stubTypeInfo{
		rules: map[string]Rule{"Offering.product": MustRule("{ productId }")},
		types: map[string]string{"CcpEntitlement.offering": "Offering"},
	}
	// offering itself is not an extension here; its nested product is.
	child := &selection.Set{Fields: []selection.Field{
		{Name: "offering", Selection: &selection.Set{Fields: []selection.Field{
			{Name: "id"},
			{Name: "product", Selection: &selection.Set{Fields: []selection.Field{{Name: "name"}}}},
		}}},
	}}

	fwd, err := Forward(Rule{}, nil, child, "CcpEntitlement", types, nil)
	require.NoError(t, err)

	require.Len(t, fwd.Selection.Fields, 2) // offering + __typename
	nested := fwd.Selection.Fields[0].Selection
	names := fieldNamesOf(nested)
	assert.Contains(t, names, "productId")
	assert.NotContains(t, names, "product")
}

func TestRewriteAddsTypenameToFragments(t *testing.T) {
	child := &selection.Set{Fragments: []selection.Fragment{{
		TypeCondition: "Offering",
		Selection:     &selection.Set{Fields: []selection.Field{{Name: "id"}}},
	}}}

	fwd, err := Forward(Rule{}, nil, child, "Node", &stubTypeInfo{}, nil)
	require.NoError(t, err)

	assert.True(t, fwd.Selection.HasField("__typename"))
	require.Len(t, fwd.Selection.Fragments, 1)
	assert.True(t, fwd.Selection.Fragments[0].Selection.HasField("__typename"))
}

func TestRewriteLeavesEmptySetAlone(t *testing.T) {
	fwd, err := Forward(Rule{}, nil, &selection.Set{}, "Offering", &stubTypeInfo{}, nil)
	require.NoError(t, err)
	assert.True(t, fwd.Selection.IsEmpty())
}
