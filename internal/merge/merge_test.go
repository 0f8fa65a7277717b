package merge

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stitchql/internal/delegate"
	"stitchql/internal/forwarding"
	"stitchql/internal/registry"
)

func entitlementsTestSchema(t *testing.T) graphql.Schema {
	t.Helper()
	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.String},
		},
	})
	entitlementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CcpEntitlement",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"offeringId": &graphql.Field{Type: graphql.ID},
		},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"ccpEntitlement": &graphql.Field{
					Type: entitlementType,
					Args: graphql.FieldConfigArgument{
						"id": &graphql.ArgumentConfig{Type: graphql.ID},
					},
				},
				"product": &graphql.Field{
					Type: productType,
					Args: graphql.FieldConfigArgument{
						"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					},
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func offeringsTestSchema(t *testing.T) graphql.Schema {
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
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	_, err := reg.Register("entitlements", entitlementsTestSchema(t))
	require.NoError(t, err)
	_, err = reg.Register("offerings", offeringsTestSchema(t))
	require.NoError(t, err)
	return reg
}

func offeringExtension() Extension {
	return Extension{
		Type: "CcpEntitlement",
		Fields: []ExtensionField{{
			Name: "offering",
			Type: "Offering",
			Binding: delegate.Binding{
				Subschema: "offerings",
				Field:     "offering",
				Rule:      forwarding.MustRule("{ offeringId }"),
			},
		}},
	}
}

func TestBuildMergesRootFieldsAndTypes(t *testing.T) {
	merged, err := Build(testRegistry(t), []Extension{offeringExtension()}, nil)
	require.NoError(t, err)

	schema := merged.Schema()
	query := schema.QueryType()
	require.NotNil(t, query)
	assert.Contains(t, query.Fields(), "ccpEntitlement")
	assert.Contains(t, query.Fields(), "product")
	assert.Contains(t, query.Fields(), "offering")

	entitlement, ok := schema.TypeMap()["CcpEntitlement"].(*graphql.Object)
	require.True(t, ok)
	assert.Contains(t, entitlement.Fields(), "id")
	assert.Contains(t, entitlement.Fields(), "offering")
}

func TestBuildLeavesSubschemasUntouched(t *testing.T) {
	reg := testRegistry(t)
	_, err := Build(reg, []Extension{offeringExtension()}, nil)
	require.NoError(t, err)

	sub, ok := reg.Lookup("entitlements")
	require.True(t, ok)
	original, ok := sub.ObjectType("CcpEntitlement")
	require.True(t, ok)
	assert.NotContains(t, original.Fields(), "offering")
}

func TestBuildExposesDelegationMetadata(t *testing.T) {
	merged, err := Build(testRegistry(t), []Extension{offeringExtension()}, nil)
	require.NoError(t, err)

	rule, ok := merged.ExtensionRule("CcpEntitlement", "offering")
	require.True(t, ok)
	assert.Equal(t, []string{"offeringId"}, rule.Required())

	_, ok = merged.ExtensionRule("CcpEntitlement", "id")
	assert.False(t, ok)

	name, ok := merged.FieldTypeName("CcpEntitlement", "offering")
	require.True(t, ok)
	assert.Equal(t, "Offering", name)

	name, ok = merged.FieldTypeName("Offering", "id")
	require.True(t, ok)
	assert.Equal(t, "ID", name)
}

func TestBuildRequiresSubschemas(t *testing.T) {
	_, err := Build(registry.New(), nil, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestBuildRejectsUnknownExtensionTarget(t *testing.T) {
	ext := Extension{Type: "Nope", Fields: []ExtensionField{{
		Name: "x", Type: "Offering",
		Binding: delegate.Binding{Subschema: "offerings", Field: "offering"},
	}}}

	_, err := Build(testRegistry(t), []Extension{ext}, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
	assert.Contains(t, err.Error(), `unknown type "Nope"`)
}

func TestBuildRejectsUnknownSubschemaBinding(t *testing.T) {
	ext := offeringExtension()
	ext.Fields[0].Binding.Subschema = "nope"

	_, err := Build(testRegistry(t), []Extension{ext}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown subschema "nope"`)
}

func TestBuildRejectsUnknownRootFieldBinding(t *testing.T) {
	ext := offeringExtension()
	ext.Fields[0].Binding.Field = "nope"

	_, err := Build(testRegistry(t), []Extension{ext}, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestBuildRejectsFieldCollision(t *testing.T) {
	ext := offeringExtension()
	ext.Fields[0].Name = "offeringId"

	_, err := Build(testRegistry(t), []Extension{ext}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestBuildRejectsUnknownRequiredAttribute(t *testing.T) {
	ext := offeringExtension()
	ext.Fields[0].Binding.Rule = forwarding.MustRule("{ warehouseId }")

	_, err := Build(testRegistry(t), []Extension{ext}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"warehouseId"`)
}

func TestBuildRejectsDuplicateRootField(t *testing.T) {
	reg := testRegistry(t)
	dupe, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"offering": &graphql.Field{Type: graphql.String},
			},
		}),
	})
	require.NoError(t, err)
	_, err = reg.Register("billing", dupe)
	require.NoError(t, err)

	_, err = Build(reg, nil, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
	assert.Contains(t, err.Error(), `"offering"`)
}

func TestBuildRejectsIncompatibleDuplicateType(t *testing.T) {
	reg := testRegistry(t)
	conflicting, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"legacyProduct": &graphql.Field{
					Type: graphql.NewObject(graphql.ObjectConfig{
						Name: "Product",
						Fields: graphql.Fields{
							"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
							"name": &graphql.Field{Type: graphql.Int}, // String elsewhere
						},
					}),
				},
			},
		}),
	})
	require.NoError(t, err)
	_, err = reg.Register("legacy", conflicting)
	require.NoError(t, err)

	_, err = Build(reg, nil, nil)
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
	assert.Contains(t, err.Error(), `"Product"`)
}

func TestBuildAcceptsIdenticalDuplicateType(t *testing.T) {
	reg := testRegistry(t)
	duplicate, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"catalogProduct": &graphql.Field{
					Type: graphql.NewObject(graphql.ObjectConfig{
						Name: "Product",
						Fields: graphql.Fields{
							"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
							"name": &graphql.Field{Type: graphql.String},
						},
					}),
				},
			},
		}),
	})
	require.NoError(t, err)
	_, err = reg.Register("catalog", duplicate)
	require.NoError(t, err)

	merged, err := Build(reg, nil, nil)
	require.NoError(t, err)
	schema := merged.Schema()
	assert.Contains(t, schema.QueryType().Fields(), "catalogProduct")
}

func TestParseTypeRef(t *testing.T) {
	ref, err := parseTypeRef("[Offering!]!")
	require.NoError(t, err)
	assert.Equal(t, "Offering", ref.named)
	assert.Equal(t, []wrapper{wrapNonNull, wrapList, wrapNonNull}, ref.wrappers)

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Offering",
		Fields: graphql.Fields{"id": &graphql.Field{Type: graphql.ID}},
	})
	built, err := ref.build(func(name string) (graphql.Type, bool) {
		if name == "Offering" {
			return obj, true
		}
		return nil, false
	})
	require.NoError(t, err)
	assert.Equal(t, "[Offering!]!", built.String())
}

func TestParseTypeRefRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "  ", "Offering!!", "[Offering", "Offer ing", "[!]"} {
		_, err := parseTypeRef(raw)
		assert.Error(t, err, raw)
	}
}
