package main

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"stitchql/internal/config"
	"stitchql/internal/delegate"
	"stitchql/internal/forwarding"
	"stitchql/internal/merge"
	"stitchql/internal/observability"
	"stitchql/internal/registry"
)

// buildSampleGraph assembles the bundled demo graph: an entitlements
// subschema and an offerings subschema stitched together with extension
// fields in both directions. Replace this with your own subschemas when
// embedding the gateway.
func buildSampleGraph(cfg *config.Config) (*merge.Schema, error) {
	reg := registry.New()

	entitlements, err := entitlementsSchema()
	if err != nil {
		return nil, fmt.Errorf("entitlements subschema: %w", err)
	}
	if _, err := reg.Register("entitlements", entitlements); err != nil {
		return nil, err
	}

	offerings, err := offeringsSchema()
	if err != nil {
		return nil, fmt.Errorf("offerings subschema: %w", err)
	}
	if _, err := reg.Register("offerings", offerings); err != nil {
		return nil, err
	}

	var metrics *observability.DelegationMetrics
	if cfg.Observability.MetricsEnabled {
		metrics, err = observability.NewDelegationMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create delegation metrics: %w", err)
		}
	}

	return merge.Build(reg, sampleExtensions(), delegate.NewDispatcher(metrics))
}

func entitlementsSchema() (graphql.Schema, error) {
	products := map[string]interface{}{
		"prod-100": map[string]interface{}{"id": "prod-100", "name": "Managed Postgres"},
		"prod-200": map[string]interface{}{"id": "prod-200", "name": "Object Storage"},
	}
	entitlements := map[string]interface{}{
		"ent-1": map[string]interface{}{"id": "ent-1", "offeringId": "off-10"},
		"ent-2": map[string]interface{}{"id": "ent-2", "offeringId": "off-20"},
	}

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	entitlementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CcpEntitlement",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"offeringId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	ccpType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Ccp",
		Description: "Namespace for cloud control plane lookups.",
		Fields: graphql.Fields{
			"ccpEntitlement": &graphql.Field{
				Type: entitlementType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					if id == "" {
						id = "ent-1"
					}
					return entitlements[id], nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"ccp": &graphql.Field{
				Type: ccpType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return map[string]interface{}{}, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return products[id], nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func offeringsSchema() (graphql.Schema, error) {
	offerings := map[string]interface{}{
		"off-10": map[string]interface{}{"id": "off-10", "productId": "prod-100"},
		"off-20": map[string]interface{}{"id": "off-20", "productId": "prod-200"},
	}

	offeringType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Offering",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"offering": &graphql.Field{
				Type: offeringType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return offerings[id], nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

func sampleExtensions() []merge.Extension {
	return []merge.Extension{
		{
			Type: "CcpEntitlement",
			Fields: []merge.ExtensionField{{
				Name:        "offering",
				Type:        "Offering",
				Description: "The offering this entitlement grants access to.",
				Binding: delegate.Binding{
					Subschema: "offerings",
					Field:     "offering",
					Rule:      forwarding.MustRule("{ offeringId }"),
					Args: func(parent map[string]interface{}) map[string]interface{} {
						return map[string]interface{}{"id": parent["offeringId"]}
					},
				},
			}},
		},
		{
			Type: "Offering",
			Fields: []merge.ExtensionField{{
				Name:        "product",
				Type:        "Product",
				Description: "The product this offering is sold as.",
				Binding: delegate.Binding{
					Subschema: "entitlements",
					Field:     "product",
					Rule:      forwarding.MustRule("{ productId }"),
					Args: func(parent map[string]interface{}) map[string]interface{} {
						return map[string]interface{}{"id": parent["productId"]}
					},
				},
			}},
		},
	}
}
