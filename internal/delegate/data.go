package delegate

import (
	"github.com/graphql-go/graphql"
)

// Data is an object that was already resolved by a downstream subschema.
// Its keys are response keys (alias when the caller used one), so merged
// fields must read it by key rather than re-running a local resolver.
type Data map[string]interface{}

// Lookup reads a field value from resolved data by the response key of the
// currently resolving field.
func (d Data) Lookup(info graphql.ResolveInfo) interface{} {
	key := info.FieldName
	if len(info.FieldASTs) > 0 && info.FieldASTs[0] != nil && info.FieldASTs[0].Alias != nil {
		key = info.FieldASTs[0].Alias.Value
	}
	return d[key]
}

// IsResolved reports whether the source object came out of a delegation.
func IsResolved(source interface{}) bool {
	_, ok := source.(Data)
	return ok
}

// AsMap exposes a parent object as a map regardless of whether it was
// produced locally or by a previous delegation.
func AsMap(source interface{}) (map[string]interface{}, bool) {
	switch v := source.(type) {
	case Data:
		return map[string]interface{}(v), true
	case map[string]interface{}:
		return v, true
	default:
		return nil, false
	}
}

// MarkResolved deep-marks every object in a delegated result so that the
// merged schema's completion reads values by response key instead of
// invoking local resolvers on data another subschema already resolved.
func MarkResolved(value interface{}) interface{} {
	switch v := value.(type) {
	case Data:
		return v
	case map[string]interface{}:
		out := make(Data, len(v))
		for key, item := range v {
			out[key] = MarkResolved(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = MarkResolved(item)
		}
		return out
	default:
		return v
	}
}
