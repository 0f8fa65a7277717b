package delegate

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchql/internal/registry"
	"stitchql/internal/selection"
)

func offeringsSubschema(t *testing.T) *registry.Subschema {
	t.Helper()
	offeringType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Offering",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"productId": &graphql.Field{Type: graphql.ID},
		},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"offering": &graphql.Field{
					Type: offeringType,
					Args: graphql.FieldConfigArgument{
						"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return map[string]interface{}{
							"id":        p.Args["id"],
							"productId": "prod-100",
						}, nil
					},
				},
			},
		}),
	})
	require.NoError(t, err)

	reg := registry.New()
	sub, err := reg.Register("offerings", schema)
	require.NoError(t, err)
	return sub
}

func TestBuildDocumentUsesVariables(t *testing.T) {
	sub := offeringsSubschema(t)
	req := Request{
		Subschema: sub,
		Operation: OperationQuery,
		Field:     "offering",
		Args:      map[string]interface{}{"id": "off-10"},
		Selection: &selection.Set{Fields: []selection.Field{{Name: "id"}, {Name: "productId"}}},
	}

	doc, values, err := buildDocument(req)
	require.NoError(t, err)

	rendered := printer.Print(doc).(string)
	assert.Contains(t, rendered, "query ($id: ID!)")
	assert.Contains(t, rendered, "offering(id: $id)")
	assert.Contains(t, rendered, "productId")
	// The value itself never appears in the document text.
	assert.NotContains(t, rendered, "off-10")
	assert.Equal(t, map[string]interface{}{"id": "off-10"}, values)
}

func TestBuildDocumentRenamesCollidingVariables(t *testing.T) {
	sub := offeringsSubschema(t)
	callerDef := ast.NewVariableDefinition(&ast.VariableDefinition{
		Variable: ast.NewVariable(&ast.Variable{Name: ast.NewName(&ast.Name{Value: "id"})}),
		Type:     ast.NewNamed(&ast.Named{Name: ast.NewName(&ast.Name{Value: "ID"})}),
	})
	req := Request{
		Subschema:          sub,
		Operation:          OperationQuery,
		Field:              "offering",
		Args:               map[string]interface{}{"id": "off-10"},
		Selection:          &selection.Set{Fields: []selection.Field{{Name: "id"}}},
		CallerVariableDefs: []*ast.VariableDefinition{callerDef},
		CallerVariables:    map[string]interface{}{"id": "caller-value"},
	}

	doc, values, err := buildDocument(req)
	require.NoError(t, err)

	rendered := printer.Print(doc).(string)
	assert.Contains(t, rendered, "$id_2: ID!")
	assert.Contains(t, rendered, "offering(id: $id_2)")
	assert.Equal(t, "caller-value", values["id"])
	assert.Equal(t, "off-10", values["id_2"])
}

func TestBuildDocumentUnknownField(t *testing.T) {
	sub := offeringsSubschema(t)
	req := Request{
		Subschema: sub,
		Operation: OperationQuery,
		Field:     "missing",
		Selection: &selection.Set{Fields: []selection.Field{{Name: "id"}}},
	}

	_, _, err := buildDocument(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no query field "missing"`)
}

func TestBuildDocumentUnknownArgument(t *testing.T) {
	sub := offeringsSubschema(t)
	req := Request{
		Subschema: sub,
		Operation: OperationQuery,
		Field:     "offering",
		Args:      map[string]interface{}{"bogus": 1},
		Selection: &selection.Set{Fields: []selection.Field{{Name: "id"}}},
	}

	_, _, err := buildDocument(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no argument "bogus"`)
}

func TestAstInputTypeWrapping(t *testing.T) {
	node, err := astInputType(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))))
	require.NoError(t, err)

	nonNull, ok := node.(*ast.NonNull)
	require.True(t, ok)
	list, ok := nonNull.Type.(*ast.List)
	require.True(t, ok)
	innerNonNull, ok := list.Type.(*ast.NonNull)
	require.True(t, ok)
	named, ok := innerNonNull.Type.(*ast.Named)
	require.True(t, ok)
	assert.Equal(t, "ID", named.Name.Value)
}
