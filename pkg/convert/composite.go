package convert

import (
	"reflect"
	"sort"

	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
)

func coerceList(l *shape.List, raw any, st CoerceState) (any, error) {
	items, ok := sequence(raw)
	if !ok {
		return nil, typeMismatch(st.Path(), l, raw)
	}
	out := make([]any, len(items))
	for i, item := range items {
		converted, err := CoerceWith(l.Elem(), item, st.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

func dumpList(l *shape.List, v any, st DumpState) (any, error) {
	items, ok := sequence(v)
	if !ok {
		return nil, typeMismatch(st.Path(), l, v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		dumped, err := DumpWith(l.Elem(), item, st.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = dumped
	}
	return out, nil
}

func coerceMap(m *shape.Map, raw any, st CoerceState) (any, error) {
	entries, ok := stringKeyed(raw)
	if !ok {
		return nil, typeMismatch(st.Path(), m, raw)
	}
	out := ordered.New(entries.Len())
	var err error
	entries.Range(func(key string, item any) bool {
		var converted any
		converted, err = CoerceWith(m.Elem(), item, st.Key(key))
		if err != nil {
			return false
		}
		out.Set(key, converted)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func dumpMap(m *shape.Map, v any, st DumpState) (any, error) {
	entries, ok := stringKeyed(v)
	if !ok {
		return nil, typeMismatch(st.Path(), m, v)
	}
	out := ordered.New(entries.Len())
	var err error
	entries.Range(func(key string, item any) bool {
		var dumped any
		dumped, err = DumpWith(m.Elem(), item, st.Key(key))
		if err != nil {
			return false
		}
		out.Set(key, dumped)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// sequence flattens any slice or array into []any. Strings and byte slices
// are not sequences.
func sequence(v any) ([]any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case []any:
		return typed, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// stringKeyed views any string-keyed map as an ordered map. Plain Go maps
// are visited in sorted key order.
func stringKeyed(v any) (*ordered.Map, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case *ordered.Map:
		if typed == nil {
			return ordered.New(0), true
		}
		return typed, true
	case ordered.Map:
		return &typed, true
	case map[string]any:
		return ordered.FromMap(typed), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := make([]string, 0, rv.Len())
	values := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		keys = append(keys, key)
		values[key] = iter.Value().Interface()
	}
	sort.Strings(keys)
	out := ordered.New(len(keys))
	for _, key := range keys {
		out.Set(key, values[key])
	}
	return out, true
}
