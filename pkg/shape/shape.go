package shape

import (
	"strings"
)

// Kind identifies a shape variant.
type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindEnum      Kind = "enum"
	KindList      Kind = "list"
	KindMap       Kind = "map"
	KindUnion     Kind = "union"
	KindModel     Kind = "model"
	KindRef       Kind = "ref"
)

// Shape is a declarative description of an expected value. The set of
// implementations is closed; the conversion engine dispatches on the concrete
// type.
type Shape interface {
	Kind() Kind
	// String describes the shape for diagnostics, e.g. "list<string>".
	String() string
	sealed()
}

// Scalar names a primitive kind.
type Scalar string

const (
	ScalarString   Scalar = "string"
	ScalarInt      Scalar = "int"
	ScalarFloat    Scalar = "float"
	ScalarBool     Scalar = "bool"
	ScalarDateTime Scalar = "datetime"
	ScalarAny      Scalar = "any"
	ScalarFile     Scalar = "file"
)

// Primitive is a scalar shape.
type Primitive struct {
	scalar Scalar
}

// Primitive shapes. They are singletons so shapes can be compared by pointer.
var (
	String   = &Primitive{scalar: ScalarString}
	Int      = &Primitive{scalar: ScalarInt}
	Float    = &Primitive{scalar: ScalarFloat}
	Bool     = &Primitive{scalar: ScalarBool}
	DateTime = &Primitive{scalar: ScalarDateTime}
	Any      = &Primitive{scalar: ScalarAny}
	File     = &Primitive{scalar: ScalarFile}
)

var primitivesByName = map[string]*Primitive{
	"string":   String,
	"int":      Int,
	"integer":  Int,
	"float":    Float,
	"number":   Float,
	"bool":     Bool,
	"boolean":  Bool,
	"datetime": DateTime,
	"any":      Any,
	"file":     File,
}

// PrimitiveNamed returns the primitive shape for a type name. Common JSON
// Schema spellings ("integer", "number", "boolean") are accepted as aliases.
// Names are case-sensitive so a declared "File" model never collides with
// the file primitive.
func PrimitiveNamed(name string) (*Primitive, bool) {
	p, ok := primitivesByName[strings.TrimSpace(name)]
	return p, ok
}

func (p *Primitive) Kind() Kind     { return KindPrimitive }
func (p *Primitive) String() string { return string(p.scalar) }
func (p *Primitive) sealed()        {}

// Scalar reports the primitive kind.
func (p *Primitive) Scalar() Scalar { return p.scalar }

// List is an ordered sequence of elements sharing one shape.
type List struct {
	elem Shape
}

// ListOf declares a list of elem. It panics when elem is nil.
func ListOf(elem Shape) *List {
	if elem == nil {
		panic("shape: list element shape is nil")
	}
	return &List{elem: elem}
}

func (l *List) Kind() Kind     { return KindList }
func (l *List) String() string { return "list<" + l.elem.String() + ">" }
func (l *List) sealed()        {}

// Elem returns the element shape.
func (l *List) Elem() Shape { return l.elem }

// Map is a string-keyed mapping whose values share one shape.
type Map struct {
	elem Shape
}

// MapOf declares a map of elem values. It panics when elem is nil.
func MapOf(elem Shape) *Map {
	if elem == nil {
		panic("shape: map element shape is nil")
	}
	return &Map{elem: elem}
}

func (m *Map) Kind() Kind     { return KindMap }
func (m *Map) String() string { return "map<" + m.elem.String() + ">" }
func (m *Map) sealed()        {}

// Elem returns the value shape.
func (m *Map) Elem() Shape { return m.elem }

// Children returns the shapes directly nested in s. References are not
// followed.
func Children(s Shape) []Shape {
	switch typed := s.(type) {
	case *List:
		return []Shape{typed.elem}
	case *Map:
		return []Shape{typed.elem}
	case *Union:
		return typed.Variants()
	case *Model:
		out := make([]Shape, 0, len(typed.fields))
		for _, field := range typed.fields {
			out = append(out, field.Shape)
		}
		return out
	default:
		return nil
	}
}
