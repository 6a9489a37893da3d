package convert

import (
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// coerceModel converts present fields first, in declared order, and only then
// reports the first absent required field.
func coerceModel(m *shape.Model, raw any, st CoerceState) (any, error) {
	var wire *ordered.Map
	switch typed := raw.(type) {
	case *ordered.Map:
		wire = typed
	case ordered.Map:
		wire = &typed
	case map[string]any:
		wire = ordered.FromMap(typed)
	default:
		return nil, typeMismatch(st.Path(), m, raw)
	}
	if wire == nil {
		return nil, typeMismatch(st.Path(), m, raw)
	}

	fields := m.Fields()
	builder := value.NewBuilder(m.Name())
	for _, field := range fields {
		item, present := wire.Get(field.Wire())
		if !present {
			continue
		}
		fieldState := st.Field(field.Name)
		if item == nil {
			if !field.Nullable {
				return nil, typeMismatch(fieldState.Path(), field.Shape, nil)
			}
			builder.Set(field.Name, nil)
			continue
		}
		converted, err := CoerceWith(field.Shape, item, fieldState)
		if err != nil {
			return nil, err
		}
		builder.Set(field.Name, converted)
	}
	for _, field := range fields {
		if field.Required && !wire.Has(field.Wire()) {
			return nil, missingField(st.Path(), m, field.Name)
		}
	}
	wire.Range(func(key string, item any) bool {
		if _, known := m.FieldByWire(key); !known {
			builder.Extra(key, item)
		}
		return true
	})
	return builder.Build(), nil
}

// fieldSource abstracts the accepted in-memory model representations.
type fieldSource interface {
	get(name string) (any, bool)
	names() []string
}

type objectSource value.Object

func (o objectSource) get(name string) (any, bool) { return value.Object(o).Get(name) }
func (o objectSource) names() []string             { return value.Object(o).Names() }

type mapSource struct{ entries *ordered.Map }

func (m mapSource) get(name string) (any, bool) { return m.entries.Get(name) }
func (m mapSource) names() []string             { return m.entries.Keys() }

func dumpModel(m *shape.Model, v any, st DumpState) (any, error) {
	var source fieldSource
	switch typed := v.(type) {
	case value.Object:
		if typed.Model() != "" && m.Name() != "" && typed.Model() != m.Name() {
			return nil, typeMismatch(st.Path(), m, v)
		}
		source = objectSource(typed)
	case value.Objecter:
		return dumpModel(m, typed.Object(), st)
	case *ordered.Map:
		if typed == nil {
			return nil, typeMismatch(st.Path(), m, v)
		}
		source = mapSource{entries: typed}
	case ordered.Map:
		source = mapSource{entries: &typed}
	case map[string]any:
		source = mapSource{entries: ordered.FromMap(typed)}
	default:
		return nil, typeMismatch(st.Path(), m, v)
	}

	fields := m.Fields()
	out := ordered.New(len(fields))
	for _, field := range fields {
		item, present := source.get(field.Name)
		if !present {
			if field.Required {
				return nil, missingField(st.Path(), m, field.Name)
			}
			continue
		}
		fieldState := st.Field(field.Name)
		if item == nil {
			if !field.Nullable {
				return nil, typeMismatch(fieldState.Path(), field.Shape, nil)
			}
			out.Set(field.Wire(), nil)
			continue
		}
		dumped, err := DumpWith(field.Shape, item, fieldState)
		if err != nil {
			return nil, err
		}
		out.Set(field.Wire(), dumped)
	}
	for _, name := range source.names() {
		if _, known := m.Field(name); !known {
			return nil, &Error{Kind: KindUnknownField, Path: st.Path(), Expected: m.String(), Field: name}
		}
	}
	return out, nil
}

func missingField(path Path, m *shape.Model, name string) *Error {
	return &Error{Kind: KindMissingRequiredField, Path: path, Expected: m.String(), Field: name}
}
