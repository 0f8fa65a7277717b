package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
)

// checkCompatible verifies that a type defined by more than one subschema
// has the same shape everywhere. The first registration's resolvers win;
// shapes must agree or the merge is rejected.
func checkCompatible(name string, first, next typeSource) error {
	if kindOf(first.typ) != kindOf(next.typ) {
		return configErrorf("type %q is a %s in subschema %q but a %s in subschema %q",
			name, kindOf(first.typ), first.sub.Name(), kindOf(next.typ), next.sub.Name())
	}
	var mismatch string
	switch a := first.typ.(type) {
	case *graphql.Scalar:
		return nil
	case *graphql.Enum:
		mismatch = compareEnums(a, next.typ.(*graphql.Enum))
	case *graphql.Object:
		mismatch = compareFieldMaps(a.Fields(), next.typ.(*graphql.Object).Fields())
	case *graphql.Interface:
		mismatch = compareFieldMaps(a.Fields(), next.typ.(*graphql.Interface).Fields())
	case *graphql.Union:
		mismatch = compareUnions(a, next.typ.(*graphql.Union))
	case *graphql.InputObject:
		mismatch = compareInputs(a, next.typ.(*graphql.InputObject))
	default:
		return configErrorf("type %q has unsupported kind", name)
	}
	if mismatch != "" {
		return configErrorf("type %q differs between subschema %q and subschema %q: %s",
			name, first.sub.Name(), next.sub.Name(), mismatch)
	}
	return nil
}

func kindOf(t graphql.Type) string {
	switch t.(type) {
	case *graphql.Scalar:
		return "scalar"
	case *graphql.Enum:
		return "enum"
	case *graphql.Object:
		return "object"
	case *graphql.Interface:
		return "interface"
	case *graphql.Union:
		return "union"
	case *graphql.InputObject:
		return "input object"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func compareFieldMaps(a, b graphql.FieldDefinitionMap) string {
	if names := missingKeys(fieldNames(a), fieldNames(b)); names != "" {
		return "field set differs: " + names
	}
	for name, af := range a {
		bf := b[name]
		if af.Type.String() != bf.Type.String() {
			return fmt.Sprintf("field %q has type %s vs %s", name, af.Type, bf.Type)
		}
		if argSignature(af.Args) != argSignature(bf.Args) {
			return fmt.Sprintf("field %q has arguments (%s) vs (%s)", name, argSignature(af.Args), argSignature(bf.Args))
		}
	}
	return ""
}

func compareEnums(a, b *graphql.Enum) string {
	av := make([]string, 0, len(a.Values()))
	for _, v := range a.Values() {
		av = append(av, v.Name)
	}
	bv := make([]string, 0, len(b.Values()))
	for _, v := range b.Values() {
		bv = append(bv, v.Name)
	}
	if names := missingKeys(av, bv); names != "" {
		return "value set differs: " + names
	}
	return ""
}

func compareUnions(a, b *graphql.Union) string {
	av := make([]string, 0, len(a.Types()))
	for _, t := range a.Types() {
		av = append(av, t.Name())
	}
	bv := make([]string, 0, len(b.Types()))
	for _, t := range b.Types() {
		bv = append(bv, t.Name())
	}
	if names := missingKeys(av, bv); names != "" {
		return "member set differs: " + names
	}
	return ""
}

func compareInputs(a, b *graphql.InputObject) string {
	an := make([]string, 0, len(a.Fields()))
	for name := range a.Fields() {
		an = append(an, name)
	}
	bn := make([]string, 0, len(b.Fields()))
	for name := range b.Fields() {
		bn = append(bn, name)
	}
	if names := missingKeys(an, bn); names != "" {
		return "field set differs: " + names
	}
	for name, af := range a.Fields() {
		bf := b.Fields()[name]
		if af.Type.String() != bf.Type.String() {
			return fmt.Sprintf("field %q has type %s vs %s", name, af.Type, bf.Type)
		}
	}
	return ""
}

func fieldNames(m graphql.FieldDefinitionMap) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// missingKeys reports the symmetric difference of two name sets, or ""
// when they are equal.
func missingKeys(a, b []string) string {
	sort.Strings(a)
	sort.Strings(b)
	as := strings.Join(a, ", ")
	bs := strings.Join(b, ", ")
	if as == bs {
		return ""
	}
	return fmt.Sprintf("[%s] vs [%s]", as, bs)
}

func argSignature(args []*graphql.Argument) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		parts = append(parts, arg.Name()+": "+arg.Type.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
