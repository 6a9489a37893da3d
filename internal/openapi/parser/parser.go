package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/casemark/casedev-go/pkg/openapi"
	"github.com/casemark/casedev-go/pkg/schema"
	"github.com/casemark/casedev-go/pkg/shape"
)

const (
	componentPrefix = "#/components/schemas/"
	typeNull        = "null"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	if options.FieldName == nil {
		options.FieldName = pkgopenapi.CamelCase
	}
	return &Parser{options: options}
}

// Parse registers every component schema and collects the operations.
// Inline object, enum and body schemas are hoisted into the registry under
// names derived from their position, e.g. ChatCompletionParams.
func (p *Parser) Parse(ctx context.Context, doc schema.Document) (pkgopenapi.Spec, error) {
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Spec{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return pkgopenapi.Spec{}, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	if (spec.Paths == nil || spec.Paths.Len() == 0) && !p.options.AllowPartialDocuments {
		return pkgopenapi.Spec{}, errors.New("openapi parser: document does not contain any paths")
	}

	b := &builder{registry: shape.NewRegistry(), fieldName: p.options.FieldName}
	if spec.Components != nil {
		names := make([]string, 0, len(spec.Components.Schemas))
		for name := range spec.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := b.component(name, spec.Components.Schemas[name]); err != nil {
				return pkgopenapi.Spec{}, err
			}
		}
	}

	operations, err := b.operations(ctx, spec.Paths)
	if err != nil {
		return pkgopenapi.Spec{}, err
	}
	if err := b.registry.Resolve(); err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: %w", err)
	}

	out := pkgopenapi.Spec{Registry: b.registry, Operations: operations}
	if spec.Info != nil {
		out.Title = spec.Info.Title
		out.Version = spec.Info.Version
	}
	return out, nil
}

type builder struct {
	registry  *shape.Registry
	fieldName func(string) string
}

// component registers a named component schema.
func (b *builder) component(name string, ref *openapi3.SchemaRef) error {
	if _, exists := b.registry.Lookup(name); exists {
		return nil
	}
	s, err := b.root(name, ref)
	if err != nil {
		return err
	}
	if err := b.registry.Register(name, s); err != nil {
		return fmt.Errorf("openapi parser: %w", err)
	}
	return nil
}

// root converts a schema that will be registered under name.
func (b *builder) root(name string, ref *openapi3.SchemaRef) (shape.Shape, error) {
	if ref == nil {
		return shape.Any, nil
	}
	if ref.Ref != "" {
		target, err := componentName(ref.Ref)
		if err != nil {
			return nil, err
		}
		return b.registry.Ref(target), nil
	}
	if ref.Value == nil {
		return nil, fmt.Errorf("openapi parser: schema %s has no value", name)
	}
	return b.schema(name, name, ref.Value)
}

// inline converts a nested schema. Named kinds (models, enums) are hoisted
// into the registry and referenced.
func (b *builder) inline(hint string, ref *openapi3.SchemaRef) (shape.Shape, error) {
	if ref == nil {
		return shape.Any, nil
	}
	if ref.Ref != "" {
		target, err := componentName(ref.Ref)
		if err != nil {
			return nil, err
		}
		return b.registry.Ref(target), nil
	}
	if ref.Value == nil {
		return nil, fmt.Errorf("openapi parser: schema %s has no value", hint)
	}
	if !hoisted(ref.Value) {
		return b.schema("", hint, ref.Value)
	}
	return b.hoist(hint, ref)
}

// hoist registers an inline schema under a free name derived from hint.
func (b *builder) hoist(hint string, ref *openapi3.SchemaRef) (shape.Shape, error) {
	name := b.freeName(hint)
	s, err := b.schema(name, name, ref.Value)
	if err != nil {
		return nil, err
	}
	if err := b.registry.Register(name, s); err != nil {
		return nil, fmt.Errorf("openapi parser: %w", err)
	}
	return b.registry.Ref(name), nil
}

func (b *builder) freeName(hint string) string {
	name := hint
	for i := 2; ; i++ {
		if _, taken := b.registry.Lookup(name); !taken {
			return name
		}
		name = fmt.Sprintf("%s%d", hint, i)
	}
}

func hoisted(v *openapi3.Schema) bool {
	if len(v.OneOf) > 0 || len(v.AnyOf) > 0 {
		return false
	}
	if len(enumValues(v.Enum)) > 0 || len(v.AllOf) > 0 || len(v.Properties) > 0 {
		return true
	}
	return false
}

// schema converts v into a shape called name (possibly empty); hint seeds
// the names of hoisted children.
func (b *builder) schema(name, hint string, v *openapi3.Schema) (shape.Shape, error) {
	switch {
	case len(v.OneOf) > 0:
		return b.union(name, hint, v.OneOf)
	case len(v.AnyOf) > 0:
		return b.union(name, hint, v.AnyOf)
	case len(v.AllOf) > 0 || len(v.Properties) > 0:
		return b.model(name, v)
	}
	if values := enumValues(v.Enum); len(values) > 0 {
		enum, err := shape.NewEnum(name, values...)
		if err != nil {
			return nil, fmt.Errorf("openapi parser: %w", err)
		}
		return enum, nil
	}

	switch primaryType(v.Type) {
	case openapi3.TypeString:
		switch v.Format {
		case "date-time":
			return shape.DateTime, nil
		case "binary":
			return shape.File, nil
		}
		return shape.String, nil
	case openapi3.TypeInteger:
		return shape.Int, nil
	case openapi3.TypeNumber:
		return shape.Float, nil
	case openapi3.TypeBoolean:
		return shape.Bool, nil
	case openapi3.TypeArray:
		elem, err := b.inline(hint+"Item", v.Items)
		if err != nil {
			return nil, err
		}
		return shape.ListOf(elem), nil
	case openapi3.TypeObject:
		if v.AdditionalProperties.Schema != nil {
			elem, err := b.inline(hint+"Value", v.AdditionalProperties.Schema)
			if err != nil {
				return nil, err
			}
			return shape.MapOf(elem), nil
		}
		return shape.MapOf(shape.Any), nil
	default:
		return shape.Any, nil
	}
}

func (b *builder) union(name, hint string, refs openapi3.SchemaRefs) (shape.Shape, error) {
	variants := make([]shape.Shape, 0, len(refs))
	for i, ref := range refs {
		variant, err := b.inline(fmt.Sprintf("%sVariant%d", hint, i+1), ref)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	union, err := shape.NewUnion(name, variants...)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: %w", err)
	}
	return union, nil
}

type property struct {
	wire     string
	ref      *openapi3.SchemaRef
	required bool
}

// model flattens allOf members and own properties into one field table.
// kin-openapi keeps properties in a Go map, so fields are ordered by wire
// name.
func (b *builder) model(name string, v *openapi3.Schema) (shape.Shape, error) {
	props := make(map[string]*property)
	collectProperties(v, props, make(map[*openapi3.Schema]bool))

	wires := make([]string, 0, len(props))
	for wire := range props {
		wires = append(wires, wire)
	}
	sort.Strings(wires)

	fields := make([]shape.Field, 0, len(wires))
	for _, wire := range wires {
		prop := props[wire]
		fieldShape, err := b.inline(name+pkgopenapi.PascalCase(wire), prop.ref)
		if err != nil {
			return nil, err
		}
		fieldName := b.fieldName(wire)
		field := shape.Optional(fieldName, fieldShape)
		if prop.required {
			field = shape.Required(fieldName, fieldShape)
		}
		field = field.WithWire(wire)
		if value := prop.ref.Value; value != nil {
			if nullable(value) {
				field = field.AsNullable()
			}
			if value.Default != nil {
				field = field.WithDefault(value.Default)
			}
		}
		fields = append(fields, field)
	}
	model, err := shape.NewModel(name, fields...)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: %w", err)
	}
	return model, nil
}

func collectProperties(v *openapi3.Schema, into map[string]*property, seen map[*openapi3.Schema]bool) {
	if v == nil || seen[v] {
		return
	}
	seen[v] = true
	for _, member := range v.AllOf {
		if member != nil {
			collectProperties(member.Value, into, seen)
		}
	}
	for wire, ref := range v.Properties {
		if ref == nil {
			continue
		}
		if existing, ok := into[wire]; ok {
			existing.ref = ref
			continue
		}
		into[wire] = &property{wire: wire, ref: ref}
	}
	for _, wire := range v.Required {
		if prop, ok := into[wire]; ok {
			prop.required = true
		}
	}
}

func (b *builder) operations(ctx context.Context, paths *openapi3.Paths) (map[string]pkgopenapi.Operation, error) {
	out := make(map[string]pkgopenapi.Operation)
	if paths == nil {
		return out, nil
	}
	routes := paths.Map()
	keys := make([]string, 0, len(routes))
	for route := range routes {
		keys = append(keys, route)
	}
	sort.Strings(keys)

	for _, route := range keys {
		item := routes[route]
		if item == nil {
			continue
		}
		methods := item.Operations()
		names := make([]string, 0, len(methods))
		for method := range methods {
			names = append(names, method)
		}
		sort.Strings(names)
		for _, method := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			op, err := b.operation(method, route, methods[method])
			if err != nil {
				return nil, err
			}
			out[op.ID] = op
		}
	}
	return out, nil
}

func (b *builder) operation(method, route string, src *openapi3.Operation) (pkgopenapi.Operation, error) {
	id := src.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + route
	}
	op, err := pkgopenapi.NewOperation(id, method, route)
	if err != nil {
		return pkgopenapi.Operation{}, err
	}
	op.Summary = src.Summary
	op.Description = src.Description
	base := pkgopenapi.PascalCase(id)

	if body := src.RequestBody; body != nil && body.Value != nil {
		mediaType, media := pickMedia(body.Value.Content)
		if media != nil && media.Schema != nil {
			name, err := b.named(base+"Params", media.Schema)
			if err != nil {
				return pkgopenapi.Operation{}, err
			}
			op.Params = name
			op.Multipart = mediaType == "multipart/form-data"
		}
	}

	if src.Responses != nil {
		responses := src.Responses.Map()
		codes := make([]string, 0, len(responses))
		for code := range responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			ref := responses[code]
			if ref == nil || ref.Value == nil {
				continue
			}
			_, media := pickMedia(ref.Value.Content)
			if media == nil || media.Schema == nil {
				continue
			}
			hint := base + "Result"
			if !strings.HasPrefix(code, "2") {
				hint = base + pkgopenapi.PascalCase(code) + "Response"
			}
			name, err := b.named(hint, media.Schema)
			if err != nil {
				return pkgopenapi.Operation{}, err
			}
			op.Responses[code] = name
		}
	}
	return op, nil
}

// named returns the registry name for a body schema, registering inline
// schemas under hint.
func (b *builder) named(hint string, ref *openapi3.SchemaRef) (string, error) {
	if ref.Ref != "" {
		return componentName(ref.Ref)
	}
	if ref.Value == nil {
		return "", fmt.Errorf("openapi parser: schema %s has no value", hint)
	}
	hoistedRef, err := b.hoist(hint, ref)
	if err != nil {
		return "", err
	}
	return hoistedRef.(*shape.Ref).Name(), nil
}

func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	for _, mediaType := range []string{"application/json", "multipart/form-data", "application/x-www-form-urlencoded"} {
		if media, ok := content[mediaType]; ok {
			return mediaType, media
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		return key, content[key]
	}
	return "", nil
}

func componentName(ref string) (string, error) {
	if !strings.HasPrefix(ref, componentPrefix) {
		return "", fmt.Errorf("openapi parser: unsupported reference %q", ref)
	}
	return strings.TrimPrefix(ref, componentPrefix), nil
}

// primaryType returns the first non-null type of a (possibly 3.1 style) type
// list.
func primaryType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, typ := range types.Slice() {
		if typ != typeNull {
			return typ
		}
	}
	return ""
}

func nullable(v *openapi3.Schema) bool {
	if v.Nullable {
		return true
	}
	if v.Type == nil {
		return false
	}
	for _, typ := range v.Type.Slice() {
		if typ == typeNull {
			return true
		}
	}
	return false
}

func enumValues(values []any) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		if value != nil {
			out = append(out, value)
		}
	}
	return out
}
