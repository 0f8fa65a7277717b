// Package registry tracks the subschemas participating in a merge and
// provides explicit found/not-found lookups into their type systems.
// Lookups are resolved once at merge time so that configuration mistakes
// surface before any query executes.
package registry

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
)

// Subschema is one independently built executable schema participating in
// the merge. The resolver table lives on the schema's field definitions;
// the registry never modifies it.
type Subschema struct {
	name   string
	schema graphql.Schema
}

// Name returns the identity the subschema was registered under.
func (s *Subschema) Name() string {
	return s.name
}

// Schema returns the underlying executable schema.
func (s *Subschema) Schema() graphql.Schema {
	return s.schema
}

// ObjectType looks up a named object type in the subschema's type map.
func (s *Subschema) ObjectType(name string) (*graphql.Object, bool) {
	t, ok := s.schema.TypeMap()[name]
	if !ok {
		return nil, false
	}
	obj, ok := t.(*graphql.Object)
	return obj, ok
}

// RootObject returns the root object for an operation kind ("query" or
// "mutation"), or false when the subschema does not define it.
func (s *Subschema) RootObject(operation string) (*graphql.Object, bool) {
	var root *graphql.Object
	switch operation {
	case "query":
		root = s.schema.QueryType()
	case "mutation":
		root = s.schema.MutationType()
	}
	if root == nil {
		return nil, false
	}
	return root, true
}

// RootField resolves a root field for an operation kind.
func (s *Subschema) RootField(operation, name string) (*graphql.FieldDefinition, bool) {
	root, ok := s.RootObject(operation)
	if !ok {
		return nil, false
	}
	field, ok := root.Fields()[name]
	if !ok || field == nil {
		return nil, false
	}
	return field, true
}

// Registry holds registered subschemas in registration order. It is
// populated once at startup and read-only afterwards, so concurrent reads
// during query execution need no locking.
type Registry struct {
	order []string
	subs  map[string]*Subschema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{subs: map[string]*Subschema{}}
}

// Register adds a subschema under a unique name.
func (r *Registry) Register(name string, schema graphql.Schema) (*Subschema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("subschema name is required")
	}
	if _, exists := r.subs[name]; exists {
		return nil, fmt.Errorf("subschema %q is already registered", name)
	}
	if schema.QueryType() == nil {
		return nil, fmt.Errorf("subschema %q has no query root", name)
	}
	sub := &Subschema{name: name, schema: schema}
	r.subs[name] = sub
	r.order = append(r.order, name)
	return sub, nil
}

// Lookup resolves a subschema by name.
func (r *Registry) Lookup(name string) (*Subschema, bool) {
	sub, ok := r.subs[name]
	return sub, ok
}

// Subschemas returns all subschemas in registration order.
func (r *Registry) Subschemas() []*Subschema {
	out := make([]*Subschema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.subs[name])
	}
	return out
}

// Len reports the number of registered subschemas.
func (r *Registry) Len() int {
	return len(r.order)
}
