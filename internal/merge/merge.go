// Package merge builds one executable gateway schema out of registered
// subschemas and extension declarations. All named types are unified by
// name, root fields are combined, and extension fields are wired to
// delegating resolvers. Every configuration problem surfaces from Build as
// a *ConfigError; query execution never validates configuration.
package merge

import (
	"sort"
	"strings"

	"github.com/graphql-go/graphql"

	"stitchql/internal/delegate"
	"stitchql/internal/forwarding"
	"stitchql/internal/registry"
)

// Schema is a merged gateway schema together with the delegation metadata
// the forwarding rewrite consults during execution.
type Schema struct {
	schema     graphql.Schema
	registry   *registry.Registry
	extensions map[string]map[string]extensionEntry
	fieldTypes map[string]map[string]string
}

type extensionEntry struct {
	binding    delegate.Binding
	resultType string
}

// Schema returns the executable merged schema.
func (s *Schema) Schema() graphql.Schema {
	return s.schema
}

// Registry returns the subschemas the merge was built from.
func (s *Schema) Registry() *registry.Registry {
	return s.registry
}

// ExtensionRule implements forwarding.TypeInfo.
func (s *Schema) ExtensionRule(typeName, fieldName string) (forwarding.Rule, bool) {
	entry, ok := s.extensions[typeName][fieldName]
	if !ok {
		return forwarding.Rule{}, false
	}
	return entry.binding.Rule, true
}

// FieldTypeName implements forwarding.TypeInfo.
func (s *Schema) FieldTypeName(typeName, fieldName string) (string, bool) {
	name, ok := s.fieldTypes[typeName][fieldName]
	return name, ok
}

type typeSource struct {
	sub *registry.Subschema
	typ graphql.Type
}

type extensionField struct {
	field ExtensionField
	ref   *typeRef
}

type builder struct {
	reg        *registry.Registry
	dispatcher *delegate.Dispatcher
	out        *Schema

	order     []string
	sources   map[string][]typeSource
	exts      map[string]map[string]extensionField
	typeCache map[string]graphql.Type
	thunkErr  error
}

// Build merges the registry's subschemas and the extension declarations
// into one executable schema. dispatcher may be nil.
func Build(reg *registry.Registry, extensions []Extension, dispatcher *delegate.Dispatcher) (*Schema, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, configErrorf("merge requires at least one subschema")
	}
	if dispatcher == nil {
		dispatcher = delegate.NewDispatcher(nil)
	}
	b := &builder{
		reg:        reg,
		dispatcher: dispatcher,
		sources:    map[string][]typeSource{},
		exts:       map[string]map[string]extensionField{},
		typeCache:  map[string]graphql.Type{},
	}
	b.out = &Schema{
		registry:   reg,
		extensions: map[string]map[string]extensionEntry{},
		fieldTypes: map[string]map[string]string{},
	}
	if err := b.collectTypes(); err != nil {
		return nil, err
	}
	if err := b.indexExtensions(extensions); err != nil {
		return nil, err
	}
	if err := b.buildNamedTypes(); err != nil {
		return nil, err
	}
	if err := b.buildSchema(); err != nil {
		return nil, err
	}
	return b.out, nil
}

// collectTypes gathers every named type across subschemas, checking that
// duplicates agree in shape. Introspection types and per-subschema root
// objects are not merged.
func (b *builder) collectTypes() error {
	for _, sub := range b.reg.Subschemas() {
		schema := sub.Schema()
		typeMap := schema.TypeMap()
		names := make([]string, 0, len(typeMap))
		for name := range typeMap {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t := typeMap[name]
			if strings.HasPrefix(name, "__") || isRootType(schema, t) {
				continue
			}
			src := typeSource{sub: sub, typ: t}
			if existing := b.sources[name]; len(existing) > 0 {
				if err := checkCompatible(name, existing[0], src); err != nil {
					return err
				}
			} else {
				b.order = append(b.order, name)
			}
			b.sources[name] = append(b.sources[name], src)
		}
	}
	return nil
}

func isRootType(schema graphql.Schema, t graphql.Type) bool {
	if obj, ok := t.(*graphql.Object); ok {
		return obj == schema.QueryType() || (schema.MutationType() != nil && obj == schema.MutationType())
	}
	return false
}

// indexExtensions validates every extension declaration against the merged
// type set and the registry, and records the delegation metadata.
func (b *builder) indexExtensions(extensions []Extension) error {
	for _, ext := range extensions {
		target := strings.TrimSpace(ext.Type)
		if target == "" {
			return configErrorf("extension declares no target type")
		}
		srcs, ok := b.sources[target]
		if !ok {
			return configErrorf("extension targets unknown type %q", target)
		}
		targetObj, ok := srcs[0].typ.(*graphql.Object)
		if !ok {
			return configErrorf("extension target %q is a %s, not an object type", target, kindOf(srcs[0].typ))
		}
		for _, field := range ext.Fields {
			if strings.TrimSpace(field.Name) == "" {
				return configErrorf("extension on %q declares a field with no name", target)
			}
			if _, exists := targetObj.Fields()[field.Name]; exists {
				return configErrorf("extension field %s.%s collides with a field defined by subschema %q",
					target, field.Name, srcs[0].sub.Name())
			}
			if _, exists := b.exts[target][field.Name]; exists {
				return configErrorf("extension field %s.%s is declared twice", target, field.Name)
			}
			ref, err := parseTypeRef(field.Type)
			if err != nil {
				return configErrorf("extension field %s.%s: %v", target, field.Name, err)
			}
			if _, ok := b.sources[ref.named]; !ok {
				return configErrorf("extension field %s.%s references unknown type %q", target, field.Name, ref.named)
			}
			if err := b.checkBinding(target, field, targetObj); err != nil {
				return err
			}
			if b.exts[target] == nil {
				b.exts[target] = map[string]extensionField{}
			}
			b.exts[target][field.Name] = extensionField{field: field, ref: ref}
			if b.out.extensions[target] == nil {
				b.out.extensions[target] = map[string]extensionEntry{}
			}
			b.out.extensions[target][field.Name] = extensionEntry{binding: field.Binding, resultType: ref.named}
		}
	}
	return nil
}

func (b *builder) checkBinding(target string, field ExtensionField, targetObj *graphql.Object) error {
	binding := field.Binding
	sub, ok := b.reg.Lookup(binding.Subschema)
	if !ok {
		return configErrorf("extension field %s.%s delegates to unknown subschema %q", target, field.Name, binding.Subschema)
	}
	operation := string(binding.OperationKind())
	rootDef, ok := sub.RootField(operation, binding.Field)
	if !ok {
		return configErrorf("extension field %s.%s delegates to %s field %q, which subschema %q does not define",
			target, field.Name, operation, binding.Field, binding.Subschema)
	}
	for _, attr := range binding.Rule.Required() {
		if _, ok := targetObj.Fields()[attr]; ok {
			continue
		}
		if _, ok := b.exts[target][attr]; ok {
			return configErrorf("extension field %s.%s requires attribute %q, which is itself an extension field",
				target, field.Name, attr)
		}
		return configErrorf("extension field %s.%s requires attribute %q, which type %q does not define",
			target, field.Name, attr, target)
	}
	if binding.Via != "" {
		resultName := namedTypeName(rootDef.Type)
		srcs, ok := b.sources[resultName]
		if !ok {
			return configErrorf("extension field %s.%s routes via %q, but %s.%s resolves to unmerged type %q",
				target, field.Name, binding.Via, binding.Subschema, binding.Field, resultName)
		}
		obj, ok := srcs[0].typ.(*graphql.Object)
		if !ok {
			return configErrorf("extension field %s.%s routes via %q on non-object type %q",
				target, field.Name, binding.Via, resultName)
		}
		if _, ok := obj.Fields()[binding.Via]; !ok {
			return configErrorf("extension field %s.%s routes via %q, which type %q does not define",
				target, field.Name, binding.Via, resultName)
		}
	}
	return nil
}

// buildNamedTypes creates the merged instance of every named type. Object,
// interface, and input object shells defer their field maps to thunks so
// circular references resolve against the cache; scalars and enums carry no
// type references and are reused from their first defining subschema.
// Unions are built last so their member objects already exist.
func (b *builder) buildNamedTypes() error {
	var unions []string
	for _, name := range b.order {
		src := b.sources[name][0]
		switch t := src.typ.(type) {
		case *graphql.Scalar:
			b.typeCache[name] = t
		case *graphql.Enum:
			b.typeCache[name] = t
		case *graphql.Object:
			b.typeCache[name] = b.objectShell(name, t)
		case *graphql.Interface:
			b.typeCache[name] = b.interfaceShell(name, t)
		case *graphql.InputObject:
			b.typeCache[name] = b.inputShell(name, t)
		case *graphql.Union:
			unions = append(unions, name)
		default:
			return configErrorf("type %q has unsupported kind", name)
		}
	}
	for _, name := range unions {
		src := b.sources[name][0]
		union, err := b.buildUnion(name, src.typ.(*graphql.Union))
		if err != nil {
			return err
		}
		b.typeCache[name] = union
	}
	b.indexFieldTypes()
	return nil
}

func (b *builder) objectShell(name string, src *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        name,
		Description: src.Description(),
		IsTypeOf:    src.IsTypeOf,
		Interfaces: (graphql.InterfacesThunk)(func() []*graphql.Interface {
			return b.convertInterfaces(src.Interfaces())
		}),
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			return b.objectFields(name, src)
		}),
	})
}

func (b *builder) objectFields(name string, src *graphql.Object) graphql.Fields {
	fields := graphql.Fields{}
	for fieldName, def := range src.Fields() {
		converted, err := b.convertOutput(def.Type)
		if err != nil {
			b.fail(err)
			continue
		}
		fields[fieldName] = &graphql.Field{
			Type:              converted,
			Args:              b.convertArgs(def.Args),
			Description:       def.Description,
			DeprecationReason: def.DeprecationReason,
			Resolve:           wrapLocal(def.Resolve),
		}
	}
	for fieldName, decl := range b.exts[name] {
		out, err := decl.ref.build(b.lookupType)
		if err != nil {
			b.fail(err)
			continue
		}
		fields[fieldName] = &graphql.Field{
			Type:        out,
			Description: decl.field.Description,
			Resolve:     b.delegationResolver(decl.field.Binding, decl.ref.named),
		}
	}
	return fields
}

func (b *builder) interfaceShell(name string, src *graphql.Interface) *graphql.Interface {
	return graphql.NewInterface(graphql.InterfaceConfig{
		Name:        name,
		Description: src.Description(),
		ResolveType: b.resolveTypeFn(src.ResolveType),
		Fields: (graphql.FieldsThunk)(func() graphql.Fields {
			return b.interfaceFields(src)
		}),
	})
}

func (b *builder) interfaceFields(src *graphql.Interface) graphql.Fields {
	fields := graphql.Fields{}
	for fieldName, def := range src.Fields() {
		converted, err := b.convertOutput(def.Type)
		if err != nil {
			b.fail(err)
			continue
		}
		fields[fieldName] = &graphql.Field{
			Type:              converted,
			Args:              b.convertArgs(def.Args),
			Description:       def.Description,
			DeprecationReason: def.DeprecationReason,
		}
	}
	return fields
}

func (b *builder) inputShell(name string, src *graphql.InputObject) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        name,
		Description: src.Description(),
		Fields: (graphql.InputObjectConfigFieldMapThunk)(func() graphql.InputObjectConfigFieldMap {
			return b.inputFields(src)
		}),
	})
}

func (b *builder) inputFields(src *graphql.InputObject) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{}
	for fieldName, def := range src.Fields() {
		converted, err := b.convertInput(def.Type)
		if err != nil {
			b.fail(err)
			continue
		}
		fields[fieldName] = &graphql.InputObjectFieldConfig{
			Type:         converted,
			DefaultValue: def.DefaultValue,
			Description:  def.Description(),
		}
	}
	return fields
}

func (b *builder) buildUnion(name string, src *graphql.Union) (*graphql.Union, error) {
	members := make([]*graphql.Object, 0, len(src.Types()))
	for _, member := range src.Types() {
		obj, ok := b.typeCache[member.Name()].(*graphql.Object)
		if !ok {
			return nil, configErrorf("union %q member %q is not a merged object type", name, member.Name())
		}
		members = append(members, obj)
	}
	return graphql.NewUnion(graphql.UnionConfig{
		Name:        name,
		Description: src.Description(),
		Types:       members,
		ResolveType: b.resolveTypeFn(src.ResolveType),
	}), nil
}

func (b *builder) convertInterfaces(interfaces []*graphql.Interface) []*graphql.Interface {
	if len(interfaces) == 0 {
		return nil
	}
	out := make([]*graphql.Interface, 0, len(interfaces))
	for _, iface := range interfaces {
		converted, ok := b.typeCache[iface.Name()].(*graphql.Interface)
		if !ok {
			b.fail(configErrorf("interface %q is not part of the merge", iface.Name()))
			continue
		}
		out = append(out, converted)
	}
	return out
}

func (b *builder) convertType(t graphql.Type) (graphql.Type, error) {
	switch typed := t.(type) {
	case nil:
		return nil, configErrorf("nil type reference")
	case *graphql.NonNull:
		inner, err := b.convertType(typed.OfType)
		if err != nil {
			return nil, err
		}
		return graphql.NewNonNull(inner), nil
	case *graphql.List:
		inner, err := b.convertType(typed.OfType)
		if err != nil {
			return nil, err
		}
		return graphql.NewList(inner), nil
	default:
		if cached, ok := b.typeCache[t.Name()]; ok {
			return cached, nil
		}
		if builtin := builtinScalar(t.Name()); builtin != nil {
			return builtin, nil
		}
		return nil, configErrorf("type %q is not part of the merge", t.Name())
	}
}

func (b *builder) convertOutput(t graphql.Output) (graphql.Output, error) {
	converted, err := b.convertType(t)
	if err != nil {
		return nil, err
	}
	return converted.(graphql.Output), nil
}

func (b *builder) convertInput(t graphql.Input) (graphql.Input, error) {
	converted, err := b.convertType(t)
	if err != nil {
		return nil, err
	}
	return converted.(graphql.Input), nil
}

func (b *builder) convertArgs(args []*graphql.Argument) graphql.FieldConfigArgument {
	if len(args) == 0 {
		return nil
	}
	out := graphql.FieldConfigArgument{}
	for _, arg := range args {
		if arg == nil {
			continue
		}
		converted, err := b.convertInput(arg.Type)
		if err != nil {
			b.fail(err)
			continue
		}
		out[arg.Name()] = &graphql.ArgumentConfig{
			Type:         converted,
			DefaultValue: arg.DefaultValue,
			Description:  arg.Description(),
		}
	}
	return out
}

func builtinScalar(name string) *graphql.Scalar {
	switch name {
	case "String":
		return graphql.String
	case "Int":
		return graphql.Int
	case "Float":
		return graphql.Float
	case "Boolean":
		return graphql.Boolean
	case "ID":
		return graphql.ID
	case "DateTime":
		return graphql.DateTime
	default:
		return nil
	}
}

func (b *builder) lookupType(name string) (graphql.Type, bool) {
	t, ok := b.typeCache[name]
	return t, ok
}

// fail records the first error raised inside a field thunk; thunks cannot
// return errors, so buildSchema checks it after schema construction.
func (b *builder) fail(err error) {
	if b.thunkErr == nil {
		b.thunkErr = err
	}
}

// indexFieldTypes records the named result type of every field of every
// merged composite type, including extension fields. The forwarding rewrite
// consults this index when it descends into nested selections.
func (b *builder) indexFieldTypes() {
	for _, name := range b.order {
		var defs graphql.FieldDefinitionMap
		switch t := b.sources[name][0].typ.(type) {
		case *graphql.Object:
			defs = t.Fields()
		case *graphql.Interface:
			defs = t.Fields()
		default:
			continue
		}
		index := make(map[string]string, len(defs)+len(b.exts[name]))
		for fieldName, def := range defs {
			index[fieldName] = namedTypeName(def.Type)
		}
		for fieldName, decl := range b.exts[name] {
			index[fieldName] = decl.ref.named
		}
		b.out.fieldTypes[name] = index
	}
}

func namedTypeName(t graphql.Type) string {
	for {
		switch typed := t.(type) {
		case *graphql.NonNull:
			t = typed.OfType
		case *graphql.List:
			t = typed.OfType
		default:
			if t == nil {
				return ""
			}
			return t.Name()
		}
	}
}

// buildSchema combines root fields across subschemas and constructs the
// executable schema. A root field defined by two subschemas is ambiguous
// and rejected.
func (b *builder) buildSchema() error {
	query, err := b.rootObject("query", "Query")
	if err != nil {
		return err
	}
	if query == nil {
		return configErrorf("no subschema defines a query root field")
	}
	config := graphql.SchemaConfig{Query: query}
	mutation, err := b.rootObject("mutation", "Mutation")
	if err != nil {
		return err
	}
	if mutation != nil {
		config.Mutation = mutation
	}
	schema, err := graphql.NewSchema(config)
	if err != nil {
		return configErrorf("merged schema is invalid: %v", err)
	}
	if b.thunkErr != nil {
		return asConfigError(b.thunkErr)
	}
	b.out.schema = schema
	return nil
}

func (b *builder) rootObject(operation, name string) (*graphql.Object, error) {
	fields := graphql.Fields{}
	owners := map[string]string{}
	for _, sub := range b.reg.Subschemas() {
		root, ok := sub.RootObject(operation)
		if !ok {
			continue
		}
		defs := root.Fields()
		fieldNames := make([]string, 0, len(defs))
		for fieldName := range defs {
			fieldNames = append(fieldNames, fieldName)
		}
		sort.Strings(fieldNames)
		for _, fieldName := range fieldNames {
			def := defs[fieldName]
			if owner, exists := owners[fieldName]; exists {
				return nil, configErrorf("%s field %q is defined by both subschema %q and subschema %q",
					operation, fieldName, owner, sub.Name())
			}
			owners[fieldName] = sub.Name()
			converted, err := b.convertOutput(def.Type)
			if err != nil {
				return nil, err
			}
			fields[fieldName] = &graphql.Field{
				Type:        converted,
				Args:        b.convertArgs(def.Args),
				Description: def.Description,
				Resolve:     b.rootResolver(sub, fieldName, delegate.Operation(operation), namedTypeName(def.Type)),
			}
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields}), nil
}
