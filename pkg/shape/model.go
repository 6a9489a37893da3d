package shape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casemark/casedev-go/pkg/value"
)

// Field describes one model field. Name is the in-memory name; WireName is
// the JSON key and defaults to Name when empty.
type Field struct {
	Name     string
	WireName string
	Shape    Shape
	Required bool
	// Nullable permits an explicit null on the wire and in memory.
	Nullable bool
	// Default is informational: it is never written into coerced or dumped
	// values. Model.Value falls back to it for unset fields.
	Default    any
	HasDefault bool
}

// Required declares a required field.
func Required(name string, s Shape) Field {
	return Field{Name: name, Shape: s, Required: true}
}

// Optional declares an optional field.
func Optional(name string, s Shape) Field {
	return Field{Name: name, Shape: s}
}

// WithWire returns a copy of f using wire as the JSON key.
func (f Field) WithWire(wire string) Field {
	f.WireName = wire
	return f
}

// AsNullable returns a copy of f that accepts explicit nulls.
func (f Field) AsNullable() Field {
	f.Nullable = true
	return f
}

// WithDefault returns a copy of f carrying a default value.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	f.HasDefault = true
	return f
}

// Wire returns the JSON key of the field.
func (f Field) Wire() string {
	if f.WireName != "" {
		return f.WireName
	}
	return f.Name
}

// Model is an ordered table of fields.
type Model struct {
	name   string
	fields []Field
	byName map[string]int
	byWire map[string]int
}

// NewModel declares a model. In-memory names and wire names must each be
// unique and non-empty, and every field needs a shape.
func NewModel(name string, fields ...Field) (*Model, error) {
	m := &Model{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		byName: make(map[string]int, len(fields)),
		byWire: make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		if strings.TrimSpace(field.Name) == "" {
			return nil, fmt.Errorf("shape: model %q: field name is required", name)
		}
		if field.Shape == nil {
			return nil, fmt.Errorf("shape: model %q: field %q has no shape", name, field.Name)
		}
		if _, exists := m.byName[field.Name]; exists {
			return nil, fmt.Errorf("shape: model %q: duplicate field name %q", name, field.Name)
		}
		wire := field.Wire()
		if _, exists := m.byWire[wire]; exists {
			return nil, fmt.Errorf("shape: model %q: duplicate wire name %q", name, wire)
		}
		m.byName[field.Name] = len(m.fields)
		m.byWire[wire] = len(m.fields)
		m.fields = append(m.fields, field)
	}
	return m, nil
}

// MustModel is NewModel for static declarations; it panics on error.
func MustModel(name string, fields ...Field) *Model {
	m, err := NewModel(name, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Kind() Kind { return KindModel }
func (m *Model) sealed()    {}

// String returns the model name, or "object" for anonymous models.
func (m *Model) String() string {
	if m.name != "" {
		return m.name
	}
	return "object"
}

// Name returns the declared name, possibly empty.
func (m *Model) Name() string { return m.name }

// Fields returns the field table in declaration order.
func (m *Model) Fields() []Field { return append([]Field(nil), m.fields...) }

// Len reports the number of fields.
func (m *Model) Len() int { return len(m.fields) }

// Field looks a field up by in-memory name.
func (m *Model) Field(name string) (Field, bool) {
	idx, ok := m.byName[name]
	if !ok {
		return Field{}, false
	}
	return m.fields[idx], true
}

// FieldByWire looks a field up by wire name.
func (m *Model) FieldByWire(wire string) (Field, bool) {
	idx, ok := m.byWire[wire]
	if !ok {
		return Field{}, false
	}
	return m.fields[idx], true
}

// ErrUnknownField is returned by Model.Value for names outside the table.
var ErrUnknownField = errors.New("shape: unknown field")

// Value reads a field from a model instance, falling back to the declared
// default when the field is unset. An explicit null is returned as nil and
// never replaced by the default.
func (m *Model) Value(obj value.Object, name string) (any, bool, error) {
	field, ok := m.Field(name)
	if !ok {
		return nil, false, fmt.Errorf("%w %q on model %s", ErrUnknownField, name, m)
	}
	if v, present := obj.Get(name); present {
		return v, true, nil
	}
	if field.HasDefault {
		return field.Default, true, nil
	}
	return nil, false, nil
}
