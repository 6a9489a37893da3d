package schema

import (
	"fmt"
	"strings"

	"github.com/casemark/casedev-go/pkg/shape"
)

// Type expressions name a shape inside a declaration:
//
//	string | int | float | bool | datetime | any | file
//	list<T>  map<T>  union<A|B|...>
//	Name     (a shape declared in the same document)

// resolver turns declared names into shapes while parsing expressions.
type resolver func(name string) (shape.Shape, bool)

// ParseType parses a type expression. Names that are neither primitives nor
// known to resolve fail.
func ParseType(expr string, resolve func(name string) (shape.Shape, bool)) (shape.Shape, error) {
	p := &typeParser{input: expr, resolve: resolve}
	s, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return s, nil
}

type typeParser struct {
	input   string
	pos     int
	resolve resolver
}

func (p *typeParser) parse() (shape.Shape, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return nil, p.errorf("type name expected")
	}
	p.skipSpace()
	if !p.accept('<') {
		return p.named(name)
	}

	switch name {
	case "list", "map":
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if name == "list" {
			return shape.ListOf(elem), nil
		}
		return shape.MapOf(elem), nil
	case "union":
		var variants []shape.Shape
		for {
			variant, err := p.parse()
			if err != nil {
				return nil, err
			}
			variants = append(variants, variant)
			p.skipSpace()
			if p.accept('|') {
				continue
			}
			if err := p.expect('>'); err != nil {
				return nil, err
			}
			return shape.NewUnion("", variants...)
		}
	default:
		return nil, p.errorf("%q does not take type arguments", name)
	}
}

func (p *typeParser) named(name string) (shape.Shape, error) {
	if primitive, ok := shape.PrimitiveNamed(name); ok {
		return primitive, nil
	}
	if p.resolve != nil {
		if s, ok := p.resolve(name); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("schema: unknown type %q", name)
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c == '-' || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) accept(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(c byte) error {
	p.skipSpace()
	if !p.accept(c) {
		return p.errorf("expected %q", string(c))
	}
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("schema: type %q at offset %d: %s", p.input, p.pos, fmt.Sprintf(format, args...))
}

// TypeExpr renders s as a type expression. Named enums, unions and models
// render by name; anonymous enums and models have no expression.
func TypeExpr(s shape.Shape) (string, error) {
	switch typed := s.(type) {
	case *shape.Primitive:
		return typed.String(), nil
	case *shape.Ref:
		return typed.Name(), nil
	case *shape.List:
		elem, err := TypeExpr(typed.Elem())
		if err != nil {
			return "", err
		}
		return "list<" + elem + ">", nil
	case *shape.Map:
		elem, err := TypeExpr(typed.Elem())
		if err != nil {
			return "", err
		}
		return "map<" + elem + ">", nil
	case *shape.Union:
		if typed.Name() != "" {
			return typed.Name(), nil
		}
		parts := make([]string, 0, typed.Len())
		for _, variant := range typed.Variants() {
			expr, err := TypeExpr(variant)
			if err != nil {
				return "", err
			}
			parts = append(parts, expr)
		}
		return "union<" + strings.Join(parts, "|") + ">", nil
	case *shape.Enum:
		if typed.Name() == "" {
			return "", fmt.Errorf("schema: anonymous enum %s has no type expression", typed)
		}
		return typed.Name(), nil
	case *shape.Model:
		if typed.Name() == "" {
			return "", fmt.Errorf("schema: anonymous model has no type expression")
		}
		return typed.Name(), nil
	default:
		return "", fmt.Errorf("schema: unsupported shape %T", s)
	}
}
