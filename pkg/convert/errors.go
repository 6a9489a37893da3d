package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// ErrorKind classifies conversion failures.
type ErrorKind string

const (
	KindTypeMismatch         ErrorKind = "type_mismatch"
	KindMissingRequiredField ErrorKind = "missing_required_field"
	KindInvalidEnumValue     ErrorKind = "invalid_enum_value"
	KindNoMatchingVariant    ErrorKind = "no_matching_variant"
	KindUnknownField         ErrorKind = "unknown_field"
	KindUnresolvedReference  ErrorKind = "unresolved_reference"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrNoMatchingVariant    = errors.New("no matching variant")
	ErrUnknownField         = errors.New("unknown field")
	ErrUnresolvedReference  = errors.New("unresolved reference")
)

var sentinels = map[ErrorKind]error{
	KindTypeMismatch:         ErrTypeMismatch,
	KindMissingRequiredField: ErrMissingRequiredField,
	KindInvalidEnumValue:     ErrInvalidEnumValue,
	KindNoMatchingVariant:    ErrNoMatchingVariant,
	KindUnknownField:         ErrUnknownField,
	KindUnresolvedReference:  ErrUnresolvedReference,
}

// Error describes why a value does not match its shape.
type Error struct {
	Kind ErrorKind
	Path Path
	// Expected describes the declared shape; Actual the offending value kind.
	Expected string
	Actual   string
	// Field names the model field for MissingRequiredField and UnknownField.
	Field string
	// Value is the rejected enum literal.
	Value any
	// Allowed lists the permitted enum literals.
	Allowed []any
	// Variants holds one failure per attempted union variant, in order.
	Variants []VariantFailure
}

// VariantFailure is the reason a single union variant rejected a value.
type VariantFailure struct {
	Variant string
	Err     error
}

// Error renders "path: message"; root errors carry no path prefix.
func (e *Error) Error() string {
	message := e.Message()
	if e.Path.IsRoot() {
		return message
	}
	return e.Path.String() + ": " + message
}

// Message renders the failure without the path.
func (e *Error) Message() string {
	switch e.Kind {
	case KindTypeMismatch:
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	case KindMissingRequiredField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case KindInvalidEnumValue:
		return fmt.Sprintf("invalid enum value %s (allowed: %s)", formatValue(e.Value), shape.FormatLiterals(e.Allowed))
	case KindNoMatchingVariant:
		reasons := make([]string, 0, len(e.Variants))
		for _, failure := range e.Variants {
			reasons = append(reasons, failure.Variant+": "+reason(failure.Err))
		}
		return fmt.Sprintf("no matching variant for %s (%s)", e.Expected, strings.Join(reasons, "; "))
	case KindUnknownField:
		return fmt.Sprintf("unknown field %q for %s", e.Field, e.Expected)
	case KindUnresolvedReference:
		return fmt.Sprintf("unresolved reference %q", e.Expected)
	default:
		return string(e.Kind)
	}
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func reason(err error) string {
	var convErr *Error
	if errors.As(err, &convErr) {
		return convErr.Message()
	}
	return err.Error()
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}

func typeMismatch(path Path, expected shape.Shape, actual any) *Error {
	return &Error{Kind: KindTypeMismatch, Path: path, Expected: expected.String(), Actual: describe(actual)}
}

// describe names the JSON-level kind of a value for diagnostics.
func describe(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case time.Time:
		return "datetime"
	case *ordered.Map, ordered.Map, map[string]any:
		return "object"
	case value.Object:
		if typed.Model() != "" {
			return typed.Model()
		}
		return "object"
	case value.Union:
		return typed.Variant
	case value.File, io.Reader:
		return "file"
	case []any:
		return "array"
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
