package convert

import (
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// CoerceJSON decodes a JSON document preserving key order and coerces it.
func CoerceJSON(s shape.Shape, data []byte) (any, error) {
	raw, err := ordered.Decode(data)
	if err != nil {
		return nil, err
	}
	return Coerce(s, raw)
}

// CoerceObject is CoerceJSON for documents whose top-level shape is a model.
func CoerceObject(m *shape.Model, data []byte) (value.Object, error) {
	out, err := CoerceJSON(m, data)
	if err != nil {
		return value.Object{}, err
	}
	return out.(value.Object), nil
}

// DumpJSON dumps v and encodes the result. The boolean reports whether the
// body can be sent again.
func DumpJSON(s shape.Shape, v any) ([]byte, bool, error) {
	dumped, err := Dump(s, v)
	if err != nil {
		return nil, false, err
	}
	data, err := ordered.Encode(dumped.Value)
	if err != nil {
		return nil, false, err
	}
	return data, dumped.CanRetry, nil
}
