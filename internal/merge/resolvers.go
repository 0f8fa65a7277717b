package merge

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"stitchql/internal/delegate"
	"stitchql/internal/forwarding"
	"stitchql/internal/registry"
	"stitchql/internal/selection"
)

// wrapLocal reads delegated objects by response key and defers to the
// subschema's own resolver otherwise. Values a downstream subschema already
// resolved must never re-enter a local resolver.
func wrapLocal(orig graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if data, ok := p.Source.(delegate.Data); ok {
			return data.Lookup(p.Info), nil
		}
		if orig != nil {
			return orig(p)
		}
		return graphql.DefaultResolveFn(p)
	}
}

// delegationResolver resolves an extension field by forwarding a
// sub-request per its binding. Failures never surface through the resolver
// return value: they are recorded on the request's collector with absolute
// paths, and the field resolves to null so sibling fields are unaffected.
func (b *builder) delegationResolver(binding delegate.Binding, resultType string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := delegate.AsMap(p.Source)
		if !ok {
			parent = map[string]interface{}{}
		}
		path := pathOf(p.Info)
		fwd, err := forwarding.Forward(binding.Rule, parent, selection.FromResolveInfo(p.Info), resultType, b.out, path)
		if err != nil {
			if collector := delegate.CollectorFromContext(p.Context); collector != nil {
				collector.Record(delegate.FieldError{Message: err.Error(), Path: path})
				return nil, nil
			}
			return nil, err
		}
		sub, ok := b.reg.Lookup(binding.Subschema)
		if !ok {
			return nil, fmt.Errorf("subschema %q is not registered", binding.Subschema)
		}
		return b.dispatch(p, binding, sub, fwd)
	}
}

// rootResolver forwards a gateway root field to the subschema that defines
// it. The child selection goes through the same rewrite as an extension
// delegation, so extension fields beneath the root field are replaced by
// their required inputs before dispatch.
func (b *builder) rootResolver(sub *registry.Subschema, field string, op delegate.Operation, resultType string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		args := make(map[string]interface{}, len(p.Args))
		for name, value := range p.Args {
			args[name] = value
		}
		binding := delegate.Binding{
			Subschema: sub.Name(),
			Field:     field,
			Operation: op,
			Args: func(map[string]interface{}) map[string]interface{} {
				return args
			},
		}
		fwd, err := forwarding.Forward(binding.Rule, nil, selection.FromResolveInfo(p.Info), resultType, b.out, pathOf(p.Info))
		if err != nil {
			return nil, err
		}
		return b.dispatch(p, binding, sub, fwd)
	}
}

// dispatch starts the sub-request immediately and returns a thunk that
// joins it, so sibling delegations run concurrently while the executor
// continues resolving other fields.
func (b *builder) dispatch(p graphql.ResolveParams, binding delegate.Binding, sub *registry.Subschema, fwd *forwarding.Forwarded) (interface{}, error) {
	parent, _ := delegate.AsMap(p.Source)
	req := delegate.Plan(binding, sub, fwd, parent, p.Info)
	ctx := p.Context
	results := make(chan delegate.Result, 1)
	go func() {
		results <- b.dispatcher.Dispatch(ctx, req)
	}()
	return func() (interface{}, error) {
		result := <-results
		if len(result.Errors) > 0 {
			if collector := delegate.CollectorFromContext(ctx); collector != nil {
				collector.Record(result.Errors...)
			}
		}
		if result.Value == nil {
			return nil, nil
		}
		return delegate.MarkResolved(result.Value), nil
	}, nil
}

// resolveTypeFn resolves abstract types for both local values and delegated
// data. Delegated objects always carry __typename because forwarded
// selections request it at every composite level.
func (b *builder) resolveTypeFn(orig graphql.ResolveTypeFn) graphql.ResolveTypeFn {
	return func(p graphql.ResolveTypeParams) *graphql.Object {
		if m, ok := delegate.AsMap(p.Value); ok {
			if name, ok := m["__typename"].(string); ok {
				if obj, ok := b.typeCache[name].(*graphql.Object); ok {
					return obj
				}
			}
		}
		if orig != nil {
			if resolved := orig(p); resolved != nil {
				if obj, ok := b.typeCache[resolved.Name()].(*graphql.Object); ok {
					return obj
				}
			}
		}
		return nil
	}
}

func pathOf(info graphql.ResolveInfo) []interface{} {
	if info.Path == nil {
		return nil
	}
	return info.Path.AsArray()
}
