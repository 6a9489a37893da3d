package convert

import (
	"errors"
	"fmt"

	"github.com/casemark/casedev-go/pkg/shape"
)

// Dumped is the result of dumping a value for a request body.
type Dumped struct {
	// Value is a JSON-encodable tree; objects are *ordered.Map.
	Value any
	// CanRetry is false when the body holds a stream that can only be read
	// once, e.g. a non-seekable file upload.
	CanRetry bool
}

// Coerce converts a decoded JSON tree into the typed value described by s.
func Coerce(s shape.Shape, raw any) (any, error) {
	return CoerceWith(s, raw, NewCoerceState())
}

// CoerceWith is Coerce with an explicit state, used by converters to recurse.
func CoerceWith(s shape.Shape, raw any, st CoerceState) (any, error) {
	resolved, err := resolve(s, st.Path())
	if err != nil {
		return nil, err
	}
	switch typed := resolved.(type) {
	case *shape.Primitive:
		return coercePrimitive(typed, raw, st)
	case *shape.Enum:
		return coerceEnum(typed, raw, st)
	case *shape.List:
		return coerceList(typed, raw, st)
	case *shape.Map:
		return coerceMap(typed, raw, st)
	case *shape.Union:
		return coerceUnion(typed, raw, st)
	case *shape.Model:
		return coerceModel(typed, raw, st)
	default:
		return nil, fmt.Errorf("convert: unsupported shape %T", resolved)
	}
}

// Dump converts a typed value into a JSON-encodable tree and reports whether
// the result can be sent more than once.
func Dump(s shape.Shape, v any) (Dumped, error) {
	st := NewDumpState()
	out, err := DumpWith(s, v, st)
	if err != nil {
		return Dumped{}, err
	}
	return Dumped{Value: out, CanRetry: st.CanRetry()}, nil
}

// ErrDumpState is returned by DumpWith for a state that was not obtained
// from NewDumpState. Such a state has no retry flag to report through.
var ErrDumpState = errors.New("convert: dump state must be created with NewDumpState")

// DumpWith is Dump with an explicit state. The retry flag of st is shared
// with every nested call.
func DumpWith(s shape.Shape, v any, st DumpState) (any, error) {
	if st.retry == nil {
		return nil, ErrDumpState
	}
	resolved, err := resolve(s, st.Path())
	if err != nil {
		return nil, err
	}
	switch typed := resolved.(type) {
	case *shape.Primitive:
		return dumpPrimitive(typed, v, st)
	case *shape.Enum:
		return dumpEnum(typed, v, st)
	case *shape.List:
		return dumpList(typed, v, st)
	case *shape.Map:
		return dumpMap(typed, v, st)
	case *shape.Union:
		return dumpUnion(typed, v, st)
	case *shape.Model:
		return dumpModel(typed, v, st)
	default:
		return nil, fmt.Errorf("convert: unsupported shape %T", resolved)
	}
}

func resolve(s shape.Shape, path Path) (shape.Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("convert: nil shape at %q", path.String())
	}
	ref, ok := s.(*shape.Ref)
	if !ok {
		return s, nil
	}
	target, ok := ref.Resolve()
	if !ok {
		return nil, &Error{Kind: KindUnresolvedReference, Path: path, Expected: ref.Name()}
	}
	return target, nil
}
