package ordered

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Decode parses a JSON document into a value tree: objects become *Map (in
// document order), arrays []any, numbers json.Number, strings string, booleans
// bool and null nil. Duplicate keys keep their first position and last value.
func Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("ordered: empty JSON document")
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("ordered: invalid JSON document")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(result gjson.Result) any {
	switch {
	case result.IsObject():
		out := New(0)
		result.ForEach(func(key, value gjson.Result) bool {
			out.Set(key.String(), fromResult(value))
			return true
		})
		return out
	case result.IsArray():
		out := make([]any, 0)
		result.ForEach(func(_, value gjson.Result) bool {
			out = append(out, fromResult(value))
			return true
		})
		return out
	}

	switch result.Type {
	case gjson.String:
		return result.Str
	case gjson.Number:
		return json.Number(result.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

// Encode serializes a value tree as compact JSON without HTML escaping. *Map
// values keep their insertion order.
func Encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalJSON writes the entries in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := Encode(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := Encode(m.values[key])
		if err != nil {
			return nil, fmt.Errorf("ordered: encode %q: %w", key, err)
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of m with the decoded object.
func (m *Map) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	object, ok := decoded.(*Map)
	if !ok {
		return fmt.Errorf("ordered: expected JSON object, found %s", describe(decoded))
	}
	*m = *object
	return nil
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
