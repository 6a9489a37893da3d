// Package prompt builds model values interactively by walking a shape and
// asking one question per field.
package prompt

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// Builder prompts for model fields.
type Builder struct {
	driver   Driver
	attempts int
	open     func(path string) (value.File, error)
}

// New constructs a Builder. Without WithDriver it prompts on the terminal.
func New(options ...Option) *Builder {
	b := &Builder{
		driver:   NewSurveyDriver(os.Stdout),
		attempts: 3,
		open:     openFile,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build asks for every field of m in declared order and validates the result
// by dumping it. Optional fields the user declines stay absent.
func (b *Builder) Build(ctx context.Context, m *shape.Model) (value.Object, error) {
	obj, err := b.model(ctx, "", m)
	if err != nil {
		return value.Object{}, err
	}
	if _, err := convert.Dump(m, obj); err != nil {
		return value.Object{}, fmt.Errorf("prompt: %w", err)
	}
	return obj, nil
}

func (b *Builder) model(ctx context.Context, prefix string, m *shape.Model) (value.Object, error) {
	obj := value.New(m.Name())
	for _, field := range m.Fields() {
		label := field.Name
		if prefix != "" {
			label = prefix + "." + field.Name
		}
		if !field.Required {
			set, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Set " + label + "?"})
			if err != nil {
				return value.Object{}, err
			}
			if !set {
				continue
			}
		}
		if field.Nullable {
			null, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Send " + label + " as null?"})
			if err != nil {
				return value.Object{}, err
			}
			if null {
				obj = obj.WithNull(field.Name)
				continue
			}
		}
		v, err := b.value(ctx, label, field.Shape, field.Default, field.HasDefault)
		if err != nil {
			return value.Object{}, err
		}
		obj = obj.With(field.Name, v)
	}
	return obj, nil
}

func (b *Builder) value(ctx context.Context, label string, s shape.Shape, def any, hasDefault bool) (any, error) {
	switch typed := s.(type) {
	case *shape.Ref:
		target, ok := typed.Resolve()
		if !ok {
			return nil, fmt.Errorf("prompt: %s: unresolved reference %q", label, typed.Name())
		}
		return b.value(ctx, label, target, def, hasDefault)
	case *shape.Primitive:
		return b.primitive(ctx, label, typed, def, hasDefault)
	case *shape.Enum:
		return b.enum(ctx, label, typed, def, hasDefault)
	case *shape.Model:
		return b.model(ctx, label, typed)
	case *shape.Union:
		options := make([]string, 0, typed.Len())
		for _, variant := range typed.Variants() {
			options = append(options, variant.String())
		}
		idx, err := b.driver.Select(ctx, SelectConfig{Message: label + " variant", Options: options})
		if err != nil {
			return nil, err
		}
		variant, ok := typed.Variant(idx)
		if !ok {
			return nil, fmt.Errorf("prompt: %s: no variant at %d", label, idx)
		}
		return b.value(ctx, label, variant, nil, false)
	case *shape.List:
		return b.list(ctx, label, typed)
	case *shape.Map:
		return b.dict(ctx, label, typed)
	default:
		return nil, fmt.Errorf("prompt: %s: unsupported shape %T", label, s)
	}
}

func (b *Builder) primitive(ctx context.Context, label string, p *shape.Primitive, def any, hasDefault bool) (any, error) {
	if p.Scalar() == shape.ScalarBool {
		fallback, _ := def.(bool)
		return b.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: fallback && hasDefault})
	}
	cfg := InputConfig{Message: label, Help: string(p.Scalar())}
	if hasDefault && def != nil {
		cfg.Default = fmt.Sprint(def)
	}
	return b.ask(ctx, cfg, func(answer string) (any, error) {
		return b.parseScalar(p, answer)
	})
}

// ask repeats an input prompt until parse accepts the answer.
func (b *Builder) ask(ctx context.Context, cfg InputConfig, parse func(string) (any, error)) (any, error) {
	for attempt := 0; attempt < b.attempts; attempt++ {
		answer, err := b.driver.Input(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out, err := parse(strings.TrimSpace(answer))
		if err == nil {
			return out, nil
		}
		if err := b.driver.Info(ctx, fmt.Sprintf("%s: %v", cfg.Message, err)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w for %s", ErrTooManyAttempts, cfg.Message)
}

func (b *Builder) parseScalar(p *shape.Primitive, answer string) (any, error) {
	switch p.Scalar() {
	case shape.ScalarString:
		return answer, nil
	case shape.ScalarInt:
		return strconv.ParseInt(answer, 10, 64)
	case shape.ScalarFloat:
		return strconv.ParseFloat(answer, 64)
	case shape.ScalarBool:
		return strconv.ParseBool(answer)
	case shape.ScalarDateTime:
		return time.Parse(time.RFC3339, answer)
	case shape.ScalarFile:
		if answer == "" {
			return nil, fmt.Errorf("path is required")
		}
		return b.open(answer)
	case shape.ScalarAny:
		if answer == "" {
			return "", nil
		}
		decoded, err := ordered.Decode([]byte(answer))
		if err != nil {
			// Plain text is kept as a string.
			return answer, nil
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unsupported scalar %s", p.Scalar())
	}
}

func (b *Builder) enum(ctx context.Context, label string, e *shape.Enum, def any, hasDefault bool) (any, error) {
	values := e.Values()
	options := make([]string, len(values))
	defaultIndex := 0
	for i, v := range values {
		options[i] = fmt.Sprint(v)
		if hasDefault && shape.LiteralEqual(canonical(def), v) {
			defaultIndex = i
		}
	}
	idx, err := b.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIndex})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(values) {
		return nil, fmt.Errorf("prompt: %s: no option at %d", label, idx)
	}
	return values[idx], nil
}

func canonical(v any) any {
	lit, _ := shape.Literal(v)
	return lit
}

// list reads lists of scalars and enums as one comma-separated answer and
// everything else item by item.
func (b *Builder) list(ctx context.Context, label string, l *shape.List) (any, error) {
	elem := l.Elem()
	if ref, ok := elem.(*shape.Ref); ok {
		if target, found := ref.Resolve(); found {
			elem = target
		}
	}

	switch typed := elem.(type) {
	case *shape.Primitive:
		if typed.Scalar() != shape.ScalarFile && typed.Scalar() != shape.ScalarAny {
			return b.ask(ctx, InputConfig{Message: label, Help: "comma separated " + string(typed.Scalar()) + " values"}, func(answer string) (any, error) {
				items := []any{}
				for _, part := range splitList(answer) {
					item, err := b.parseScalar(typed, part)
					if err != nil {
						return nil, err
					}
					items = append(items, item)
				}
				return items, nil
			})
		}
	case *shape.Enum:
		return b.ask(ctx, InputConfig{Message: label, Help: "comma separated, one of " + shape.FormatLiterals(typed.Values())}, func(answer string) (any, error) {
			items := []any{}
			for _, part := range splitList(answer) {
				item, ok := matchOption(typed, part)
				if !ok {
					return nil, fmt.Errorf("%q is not one of %s", part, shape.FormatLiterals(typed.Values()))
				}
				items = append(items, item)
			}
			return items, nil
		})
	}

	items := []any{}
	for i := 0; ; i++ {
		more, err := b.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s[%d]?", label, i)})
		if err != nil {
			return nil, err
		}
		if !more {
			return items, nil
		}
		item, err := b.value(ctx, fmt.Sprintf("%s[%d]", label, i), elem, nil, false)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (b *Builder) dict(ctx context.Context, label string, m *shape.Map) (any, error) {
	out := ordered.New(0)
	for {
		more, err := b.driver.Confirm(ctx, ConfirmConfig{Message: "Add an entry to " + label + "?"})
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
		key, err := b.driver.Input(ctx, InputConfig{Message: label + " key"})
		if err != nil {
			return nil, err
		}
		key = strings.TrimSpace(key)
		item, err := b.value(ctx, label+"."+key, m.Elem(), nil, false)
		if err != nil {
			return nil, err
		}
		out.Set(key, item)
	}
}

func splitList(answer string) []string {
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	parts := strings.Split(answer, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func matchOption(e *shape.Enum, answer string) (any, bool) {
	for _, v := range e.Values() {
		if fmt.Sprint(v) == answer {
			return v, true
		}
	}
	return nil, false
}
