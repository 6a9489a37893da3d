package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/casemark/casedev-go/pkg/shape"
)

// Declarations is the decoded form of a declaration file. JSON documents are
// read through the same YAML decoder.
type Declarations struct {
	Enums  map[string][]any     `yaml:"enums,omitempty" json:"enums,omitempty"`
	Unions map[string][]string  `yaml:"unions,omitempty" json:"unions,omitempty"`
	Models map[string]ModelDecl `yaml:"models,omitempty" json:"models,omitempty"`
}

// ModelDecl declares a model's field table.
type ModelDecl struct {
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []FieldDecl `yaml:"fields" json:"fields"`
}

// FieldDecl declares one field. Wire defaults to Name.
type FieldDecl struct {
	Name        string `yaml:"name" json:"name"`
	Wire        string `yaml:"wire,omitempty" json:"wire,omitempty"`
	Type        string `yaml:"type" json:"type"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Nullable    bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Default is kept as a node so an explicit `default: null` differs from
	// no default.
	Default yaml.Node `yaml:"default,omitempty" json:"-"`
}

// HasDefault reports whether the declaration carries a default value.
func (f FieldDecl) HasDefault() bool {
	return !f.Default.IsZero()
}

// DefaultValue decodes the declared default.
func (f FieldDecl) DefaultValue() (any, error) {
	if !f.HasDefault() {
		return nil, nil
	}
	var out any
	if err := f.Default.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode reads declarations, rejecting unknown keys.
func Decode(raw []byte) (Declarations, error) {
	var decls Declarations
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&decls); err != nil {
		if errors.Is(err, io.EOF) {
			return Declarations{}, errors.New("schema: document is empty")
		}
		return Declarations{}, fmt.Errorf("schema: decode: %w", err)
	}
	return decls, nil
}

// Parse builds a registry from a declaration document.
func Parse(doc Document) (*shape.Registry, error) {
	decls, err := Decode(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.Location())
	}
	return decls.Registry()
}

// ParseBytes is Parse for an in-memory payload.
func ParseBytes(raw []byte) (*shape.Registry, error) {
	decls, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return decls.Registry()
}

// Registry registers every declaration. References between declarations are
// late-bound, so declaration order does not matter and models may recurse.
func (d Declarations) Registry() (*shape.Registry, error) {
	registry := shape.NewRegistry()
	declared := make(map[string]string)
	for _, group := range []struct {
		kind  string
		names []string
	}{
		{"enum", sortedKeys(d.Enums)},
		{"union", sortedKeys(d.Unions)},
		{"model", sortedKeys(d.Models)},
	} {
		for _, name := range group.names {
			if previous, exists := declared[name]; exists {
				return nil, fmt.Errorf("schema: %s %q already declared as %s", group.kind, name, previous)
			}
			if _, primitive := shape.PrimitiveNamed(name); primitive {
				return nil, fmt.Errorf("schema: %s %q shadows a primitive type", group.kind, name)
			}
			declared[name] = group.kind
		}
	}
	resolve := func(name string) (shape.Shape, bool) {
		if _, ok := declared[name]; !ok {
			return nil, false
		}
		return registry.Ref(name), true
	}

	for _, name := range sortedKeys(d.Enums) {
		enum, err := shape.NewEnum(name, d.Enums[name]...)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		registry.MustRegister(name, enum)
	}
	for _, name := range sortedKeys(d.Unions) {
		variants := make([]shape.Shape, 0, len(d.Unions[name]))
		for _, expr := range d.Unions[name] {
			variant, err := ParseType(expr, resolve)
			if err != nil {
				return nil, fmt.Errorf("schema: union %q: %w", name, err)
			}
			variants = append(variants, variant)
		}
		union, err := shape.NewUnion(name, variants...)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		registry.MustRegister(name, union)
	}
	for _, name := range sortedKeys(d.Models) {
		model, err := buildModel(name, d.Models[name], resolve)
		if err != nil {
			return nil, err
		}
		registry.MustRegister(name, model)
	}

	if err := registry.Resolve(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return registry, nil
}

func buildModel(name string, decl ModelDecl, resolve resolver) (*shape.Model, error) {
	fields := make([]shape.Field, 0, len(decl.Fields))
	for i, fieldDecl := range decl.Fields {
		if strings.TrimSpace(fieldDecl.Name) == "" {
			return nil, fmt.Errorf("schema: model %q: field %d has no name", name, i)
		}
		fieldShape, err := ParseType(fieldDecl.Type, resolve)
		if err != nil {
			return nil, fmt.Errorf("schema: model %q field %q: %w", name, fieldDecl.Name, err)
		}
		field := shape.Optional(fieldDecl.Name, fieldShape)
		if fieldDecl.Required {
			field = shape.Required(fieldDecl.Name, fieldShape)
		}
		if fieldDecl.Wire != "" {
			field = field.WithWire(fieldDecl.Wire)
		}
		if fieldDecl.Nullable {
			field = field.AsNullable()
		}
		if fieldDecl.HasDefault() {
			value, err := fieldDecl.DefaultValue()
			if err != nil {
				return nil, fmt.Errorf("schema: model %q field %q: default: %w", name, fieldDecl.Name, err)
			}
			field = field.WithDefault(value)
		}
		fields = append(fields, field)
	}
	model, err := shape.NewModel(name, fields...)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return model, nil
}

// Describe renders a registry back into declarations.
func Describe(registry *shape.Registry) (Declarations, error) {
	decls := Declarations{}
	for _, name := range registry.Names() {
		s, _ := registry.Lookup(name)
		switch typed := s.(type) {
		case *shape.Enum:
			if decls.Enums == nil {
				decls.Enums = make(map[string][]any)
			}
			decls.Enums[name] = typed.Values()
		case *shape.Union:
			variants := make([]string, 0, typed.Len())
			for _, variant := range typed.Variants() {
				expr, err := TypeExpr(variant)
				if err != nil {
					return Declarations{}, fmt.Errorf("schema: union %q: %w", name, err)
				}
				variants = append(variants, expr)
			}
			if decls.Unions == nil {
				decls.Unions = make(map[string][]string)
			}
			decls.Unions[name] = variants
		case *shape.Model:
			decl := ModelDecl{Fields: make([]FieldDecl, 0, typed.Len())}
			for _, field := range typed.Fields() {
				expr, err := TypeExpr(field.Shape)
				if err != nil {
					return Declarations{}, fmt.Errorf("schema: model %q field %q: %w", name, field.Name, err)
				}
				fieldDecl := FieldDecl{
					Name:     field.Name,
					Type:     expr,
					Required: field.Required,
					Nullable: field.Nullable,
				}
				if field.Wire() != field.Name {
					fieldDecl.Wire = field.Wire()
				}
				if field.HasDefault {
					if err := fieldDecl.Default.Encode(field.Default); err != nil {
						return Declarations{}, fmt.Errorf("schema: model %q field %q: default: %w", name, field.Name, err)
					}
				}
				decl.Fields = append(decl.Fields, fieldDecl)
			}
			if decls.Models == nil {
				decls.Models = make(map[string]ModelDecl)
			}
			decls.Models[name] = decl
		default:
			return Declarations{}, fmt.Errorf("schema: %q: only enums, unions and models can be described, got %s", name, s.Kind())
		}
	}
	return decls, nil
}

// Encode writes declarations as YAML.
func Encode(decls Declarations) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(decls); err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
