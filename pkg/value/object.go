package value

import (
	"github.com/casemark/casedev-go/pkg/ordered"
)

// Object is an immutable model instance. Each field is in one of three
// states: absent, explicitly null (present with a nil value) or set to a
// value. Mutating-looking methods return a new Object and never modify the
// receiver, so a published Object can be shared between goroutines.
type Object struct {
	model  string
	names  []string
	fields map[string]any
	extras *ordered.Map
}

// Objecter is implemented by typed wrappers that can expose their fields as
// an Object, e.g. generated parameter structs.
type Objecter interface {
	Object() Object
}

// New returns an empty Object for the named model.
func New(model string) Object {
	return Object{model: model}
}

// Model returns the model name the instance belongs to.
func (o Object) Model() string {
	return o.model
}

// Get returns the value of a field. ok is false when the field is absent; an
// explicitly null field returns (nil, true).
func (o Object) Get(name string) (any, bool) {
	if o.fields == nil {
		return nil, false
	}
	value, ok := o.fields[name]
	return value, ok
}

// Has reports whether the field is present (set or explicitly null).
func (o Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// IsNull reports whether the field is present and explicitly null.
func (o Object) IsNull(name string) bool {
	value, ok := o.Get(name)
	return ok && value == nil
}

// Names returns the present field names in the order they were set.
func (o Object) Names() []string {
	return append([]string(nil), o.names...)
}

// Len reports the number of present fields.
func (o Object) Len() int {
	return len(o.names)
}

// With returns a copy with the field set to value. A nil value marks the
// field explicitly null.
func (o Object) With(name string, value any) Object {
	next := o.clone(1)
	next.set(name, value)
	return next
}

// WithNull returns a copy with the field explicitly null.
func (o Object) WithNull(name string) Object {
	return o.With(name, nil)
}

// Without returns a copy with the field absent.
func (o Object) Without(name string) Object {
	if !o.Has(name) {
		return o
	}
	next := o.clone(0)
	delete(next.fields, name)
	for i, existing := range next.names {
		if existing == name {
			next.names = append(next.names[:i:i], next.names[i+1:]...)
			break
		}
	}
	return next
}

// Extra returns an unrecognized wire key captured during coercion.
func (o Object) Extra(wire string) (any, bool) {
	return o.extras.Get(wire)
}

// ExtraKeys lists unrecognized wire keys in the order they were received.
func (o Object) ExtraKeys() []string {
	return o.extras.Keys()
}

// Equal reports whether both objects belong to the same model and hold the
// same fields with equal values. Field order and extras are not compared.
func (o Object) Equal(other Object) bool {
	if o.model != other.model || len(o.names) != len(other.names) {
		return false
	}
	for name, value := range o.fields {
		theirs, ok := other.fields[name]
		if !ok || !Equal(value, theirs) {
			return false
		}
	}
	return true
}

// Equal compares two typed value trees, looking through Objects, Unions and
// ordered maps.
func Equal(a, b any) bool {
	switch left := a.(type) {
	case Object:
		right, ok := b.(Object)
		return ok && left.Equal(right)
	case Union:
		right, ok := b.(Union)
		return ok && left.Index == right.Index && Equal(left.Value, right.Value)
	case *ordered.Map:
		right, ok := b.(*ordered.Map)
		if !ok || left.Len() != right.Len() {
			return false
		}
		equal := true
		left.Range(func(key string, value any) bool {
			theirs, found := right.Get(key)
			equal = found && Equal(value, theirs)
			return equal
		})
		return equal
	case []any:
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !Equal(left[i], right[i]) {
				return false
			}
		}
		return true
	default:
		return ordered.ValuesEqual(a, b)
	}
}

func (o Object) clone(extra int) Object {
	next := Object{
		model:  o.model,
		names:  make([]string, len(o.names), len(o.names)+extra),
		fields: make(map[string]any, len(o.fields)+extra),
		extras: o.extras,
	}
	copy(next.names, o.names)
	for name, value := range o.fields {
		next.fields[name] = value
	}
	return next
}

func (o *Object) set(name string, value any) {
	if o.fields == nil {
		o.fields = make(map[string]any)
	}
	if _, exists := o.fields[name]; !exists {
		o.names = append(o.names, name)
	}
	o.fields[name] = value
}

// Builder assembles an Object in one pass without intermediate copies. It is
// not safe for concurrent use; Build hands out an independent Object.
type Builder struct {
	object Object
}

// NewBuilder starts an Object for the named model.
func NewBuilder(model string) *Builder {
	return &Builder{object: New(model)}
}

// Set assigns a field value; nil marks the field explicitly null.
func (b *Builder) Set(name string, value any) *Builder {
	b.object.set(name, value)
	return b
}

// Extra records an unrecognized wire key.
func (b *Builder) Extra(wire string, value any) *Builder {
	if b.object.extras == nil {
		b.object.extras = ordered.New(0)
	}
	b.object.extras.Set(wire, value)
	return b
}

// Build returns the assembled Object.
func (b *Builder) Build() Object {
	built := b.object.clone(0)
	if b.object.extras != nil {
		built.extras = b.object.extras.Clone()
	}
	return built
}
