package convert

import (
	"github.com/casemark/casedev-go/pkg/shape"
)

// coerceEnum and dumpEnum both return the permitted literal itself, so a
// symbolic constant (type Role string) and its raw literal are
// interchangeable at the API boundary.

func coerceEnum(e *shape.Enum, raw any, st CoerceState) (any, error) {
	return matchEnum(e, raw, st.Path())
}

func dumpEnum(e *shape.Enum, v any, st DumpState) (any, error) {
	return matchEnum(e, v, st.Path())
}

func matchEnum(e *shape.Enum, v any, path Path) (any, error) {
	allowed := e.Values()
	if literal, ok := shape.Literal(v); ok {
		for _, candidate := range allowed {
			if shape.LiteralEqual(candidate, literal) {
				return candidate, nil
			}
		}
	}
	return nil, &Error{
		Kind:     KindInvalidEnumValue,
		Path:     path,
		Expected: e.String(),
		Actual:   describe(v),
		Value:    v,
		Allowed:  allowed,
	}
}
