package convert

import (
	"encoding/json"
	"io"
	"math"
	"reflect"
	"time"

	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// Primitive coercion is strict: numeric strings are not numbers and numbers
// are not strings.

func coercePrimitive(p *shape.Primitive, raw any, st CoerceState) (any, error) {
	switch p.Scalar() {
	case shape.ScalarString:
		if s, ok := asString(raw); ok {
			return s, nil
		}
	case shape.ScalarInt:
		if i, ok := asInt(raw); ok {
			return i, nil
		}
	case shape.ScalarFloat:
		if f, ok := asFloat(raw); ok {
			return f, nil
		}
	case shape.ScalarBool:
		if b, ok := asBool(raw); ok {
			return b, nil
		}
	case shape.ScalarDateTime:
		switch typed := raw.(type) {
		case time.Time:
			return typed, nil
		case string:
			if t, err := time.Parse(time.RFC3339, typed); err == nil {
				return t, nil
			}
		}
	case shape.ScalarAny:
		return raw, nil
	case shape.ScalarFile:
		switch typed := raw.(type) {
		case value.File:
			return typed, nil
		case io.Reader:
			return value.File{Body: typed}, nil
		}
	}
	return nil, typeMismatch(st.Path(), p, raw)
}

// Dumping a primitive is identity once the value has the right kind. The
// kind check is what lets a union find the matching variant.
func dumpPrimitive(p *shape.Primitive, v any, st DumpState) (any, error) {
	ok := false
	switch p.Scalar() {
	case shape.ScalarString:
		_, ok = asString(v)
	case shape.ScalarInt:
		_, ok = asInt(v)
	case shape.ScalarFloat:
		_, ok = asFloat(v)
	case shape.ScalarBool:
		_, ok = asBool(v)
	case shape.ScalarDateTime:
		switch typed := v.(type) {
		case time.Time:
			return typed.Format(time.RFC3339Nano), nil
		case string:
			_, err := time.Parse(time.RFC3339, typed)
			ok = err == nil
		}
	case shape.ScalarAny:
		ok = true
	case shape.ScalarFile:
		switch typed := v.(type) {
		case value.File:
			if !typed.Rewindable() {
				st.MarkOneShot()
			}
			ok = typed.Body != nil
		case io.Reader:
			if _, seekable := typed.(io.Seeker); !seekable {
				st.MarkOneShot()
			}
			ok = true
		}
	}
	if !ok {
		return nil, typeMismatch(st.Path(), p, v)
	}
	return v, nil
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	if _, isNumber := v.(json.Number); isNumber {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if v == nil {
		return false, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

// asInt accepts integral numbers only. The value decides, not the notation:
// floats and json.Number literals such as 1.0 or 1e2 are accepted because
// encoding/json decodes every number as float64.
func asInt(v any) (int64, bool) {
	switch typed := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i, true
		}
		f, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return integralFloat(rv.Float())
	default:
		return 0, false
	}
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
