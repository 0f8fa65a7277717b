package forwarding

import (
	"fmt"

	"stitchql/internal/selection"
)

// TypeInfo reports how fields of merged object types resolve. The merger
// implements it; Forward uses it to rewrite child selections so that every
// later delegation hop finds its required inputs fetched.
type TypeInfo interface {
	// ExtensionRule returns the forwarding rule for typeName.fieldName when
	// that field is an extension field.
	ExtensionRule(typeName, fieldName string) (Rule, bool)
	// FieldTypeName returns the named result type of typeName.fieldName.
	FieldTypeName(typeName, fieldName string) (string, bool)
}

// MissingInputError reports a required parent attribute that was not
// resolved on the parent object. It is a local configuration problem of the
// parent query, not a delegation failure.
type MissingInputError struct {
	Attribute string
	Path      []interface{}
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required attribute %q was not resolved on the parent object", e.Attribute)
}

// Forwarded is the outcome of the forward step: the required attribute
// values read off the parent plus the rewritten child selection to send
// downstream.
type Forwarded struct {
	Required  map[string]interface{}
	Selection *selection.Set
}

// Forward verifies the rule's required attributes against the parent
// object, collects their values for argument building, and rewrites the
// caller's child selection for dispatch. typeName is the named result type
// of the extension field; path locates the extension field in the response
// for error reporting.
func Forward(rule Rule, parent map[string]interface{}, child *selection.Set, typeName string, types TypeInfo, path []interface{}) (*Forwarded, error) {
	required := make(map[string]interface{}, len(rule.Required()))
	for _, attr := range rule.Required() {
		value, ok := parent[attr]
		if !ok || value == nil {
			return nil, &MissingInputError{Attribute: attr, Path: path}
		}
		required[attr] = value
	}
	return &Forwarded{
		Required:  required,
		Selection: rewriteSet(child, typeName, types),
	}, nil
}

// rewriteSet prepares a selection for execution against the target
// subschema: extension fields are replaced by their own rules' selections
// (the target cannot resolve them, and the replacement guarantees the next
// hop's inputs are fetched), and __typename is added to every composite
// level so abstract types resolve from delegated data.
func rewriteSet(set *selection.Set, typeName string, types TypeInfo) *selection.Set {
	if set.IsEmpty() {
		return set
	}
	out := &selection.Set{}
	for _, field := range set.Fields {
		if types != nil {
			if rule, ok := types.ExtensionRule(typeName, field.Name); ok {
				injectRequirements(out, rule.Selection())
				continue
			}
		}
		rewritten := field
		if !field.Selection.IsEmpty() {
			childType := typeName
			if types != nil {
				if name, ok := types.FieldTypeName(typeName, field.Name); ok {
					childType = name
				}
			}
			rewritten.Selection = rewriteSet(field.Selection, childType, types)
		}
		out.Fields = append(out.Fields, rewritten)
	}
	for _, fragment := range set.Fragments {
		condition := fragment.TypeCondition
		if condition == "" {
			condition = typeName
		}
		out.Fragments = append(out.Fragments, selection.Fragment{
			TypeCondition: fragment.TypeCondition,
			Selection:     rewriteSet(fragment.Selection, condition, types),
		})
	}
	if len(out.Fields) > 0 || len(out.Fragments) > 0 {
		ensureTypename(out)
	}
	return out
}

// injectRequirements merges a rule's selection into the outgoing set,
// skipping fields that are already selected plainly.
func injectRequirements(out *selection.Set, required *selection.Set) {
	if required.IsEmpty() {
		return
	}
	for _, field := range required.Fields {
		if hasPlainField(out, field.Name) {
			continue
		}
		out.Fields = append(out.Fields, field)
	}
}

func hasPlainField(set *selection.Set, name string) bool {
	for _, f := range set.Fields {
		if f.Name == name && f.Alias == "" {
			return true
		}
	}
	return false
}

func ensureTypename(set *selection.Set) {
	if hasPlainField(set, "__typename") {
		return
	}
	set.Fields = append(set.Fields, selection.Field{Name: "__typename"})
}
