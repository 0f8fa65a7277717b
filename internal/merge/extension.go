package merge

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphql-go/graphql"

	"stitchql/internal/delegate"
)

// Extension adds delegated fields to an object type owned by another
// subschema. The target type keeps all of its own fields; each extension
// field resolves by forwarding a sub-request per its binding.
type Extension struct {
	// Type names the object type being extended.
	Type string
	// Fields are the fields added to the type.
	Fields []ExtensionField
}

// ExtensionField is one delegated field on an extended type.
type ExtensionField struct {
	// Name is the field name as clients select it.
	Name string
	// Type is a compact type reference, e.g. "Offering" or "[Offering!]!".
	// The named type must exist in the merged type set.
	Type string
	// Description is the field's schema description.
	Description string
	// Binding declares where and how the field delegates.
	Binding delegate.Binding
}

// typeRef is a parsed compact type reference. Wrappers are stored outermost
// first, so "[Offering!]!" parses to non-null, list, non-null around the
// named type.
type typeRef struct {
	named    string
	wrappers []wrapper
}

type wrapper int

const (
	wrapList wrapper = iota
	wrapNonNull
)

func parseTypeRef(ref string) (*typeRef, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return nil, fmt.Errorf("type reference is empty")
	}
	var wrappers []wrapper
	for {
		if strings.HasSuffix(s, "!") {
			if len(wrappers) > 0 && wrappers[len(wrappers)-1] == wrapNonNull {
				return nil, fmt.Errorf("invalid type reference %q", ref)
			}
			wrappers = append(wrappers, wrapNonNull)
			s = strings.TrimSpace(strings.TrimSuffix(s, "!"))
			continue
		}
		if strings.HasPrefix(s, "[") {
			if !strings.HasSuffix(s, "]") {
				return nil, fmt.Errorf("invalid type reference %q: unbalanced brackets", ref)
			}
			wrappers = append(wrappers, wrapList)
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	if !isTypeName(s) {
		return nil, fmt.Errorf("invalid type reference %q", ref)
	}
	return &typeRef{named: s, wrappers: wrappers}, nil
}

// build renders the reference against the merged type set, applying
// wrappers innermost first.
func (r *typeRef) build(lookup func(string) (graphql.Type, bool)) (graphql.Output, error) {
	t, ok := lookup(r.named)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", r.named)
	}
	out, ok := t.(graphql.Output)
	if !ok {
		return nil, fmt.Errorf("type %q cannot be used as a field type", r.named)
	}
	for i := len(r.wrappers) - 1; i >= 0; i-- {
		switch r.wrappers[i] {
		case wrapNonNull:
			out = graphql.NewNonNull(out)
		case wrapList:
			out = graphql.NewList(out)
		}
	}
	return out, nil
}

func isTypeName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
