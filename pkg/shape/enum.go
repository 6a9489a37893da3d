package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Enum is a closed set of literal values. Literals are stored in canonical
// form (see Literal) and keep their declaration order.
type Enum struct {
	name   string
	values []any
}

// NewEnum declares an enum. Literals must be strings, integers, floats or
// booleans, and must be unique.
func NewEnum(name string, values ...any) (*Enum, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("shape: enum %q declares no values", name)
	}
	canonical := make([]any, 0, len(values))
	for _, raw := range values {
		literal, ok := Literal(raw)
		if !ok {
			return nil, fmt.Errorf("shape: enum %q: unsupported literal %v (%T)", name, raw, raw)
		}
		for _, existing := range canonical {
			if LiteralEqual(existing, literal) {
				return nil, fmt.Errorf("shape: enum %q: duplicate literal %v", name, raw)
			}
		}
		canonical = append(canonical, literal)
	}
	return &Enum{name: name, values: canonical}, nil
}

// MustEnum is NewEnum for static declarations; it panics on error.
func MustEnum(name string, values ...any) *Enum {
	e, err := NewEnum(name, values...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum) Kind() Kind { return KindEnum }
func (e *Enum) sealed()    {}

// String returns the enum name, or "enum[a,b]" for anonymous enums.
func (e *Enum) String() string {
	if e.name != "" {
		return e.name
	}
	return "enum" + FormatLiterals(e.values)
}

// Name returns the declared name, possibly empty.
func (e *Enum) Name() string { return e.name }

// Values returns the permitted literals in declaration order.
func (e *Enum) Values() []any { return append([]any(nil), e.values...) }

// Contains reports whether v equals one of the permitted literals.
func (e *Enum) Contains(v any) bool {
	literal, ok := Literal(v)
	if !ok {
		return false
	}
	for _, allowed := range e.values {
		if LiteralEqual(allowed, literal) {
			return true
		}
	}
	return false
}

// FormatLiterals renders literals as "[a,b,c]".
func FormatLiterals(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

var errNotLiteral = errors.New("not a literal")

// Literal converts v to its canonical literal form: string kinds become
// string, integer kinds int64, float kinds float64 and bools bool. Named types
// (for example `type Role string`) convert to their underlying literal.
// json.Number converts to int64 when integral, float64 otherwise.
func Literal(v any) (any, bool) {
	out, err := literal(v)
	return out, err == nil
}

func literal(v any) (any, error) {
	switch typed := v.(type) {
	case nil:
		return nil, errNotLiteral
	case string:
		return typed, nil
	case bool:
		return typed, nil
	case int64:
		return typed, nil
	case float64:
		return typed, nil
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i, nil
		}
		f, err := typed.Float64()
		if err != nil {
			return nil, errNotLiteral
		}
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, errNotLiteral
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	default:
		return nil, errNotLiteral
	}
}

// LiteralEqual compares two canonical literals. Strings compare exactly
// (case-sensitive); numbers compare by value across int64 and float64.
func LiteralEqual(a, b any) bool {
	switch left := a.(type) {
	case int64:
		switch right := b.(type) {
		case int64:
			return left == right
		case float64:
			return float64(left) == right
		}
	case float64:
		switch right := b.(type) {
		case int64:
			return left == float64(right)
		case float64:
			return left == right
		}
	case string:
		right, ok := b.(string)
		return ok && left == right
	case bool:
		right, ok := b.(bool)
		return ok && left == right
	}
	return false
}
