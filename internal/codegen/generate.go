// Package codegen renders a shape registry as Go source: one package-level
// variable per registered shape, registered into a generated Registry, plus
// optional client.Endpoint values for OpenAPI operations.
package codegen

import (
	"fmt"
	"go/format"
	"io/fs"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/flosch/pongo2/v6"

	"github.com/casemark/casedev-go/pkg/openapi"
	"github.com/casemark/casedev-go/pkg/shape"
)

const (
	shapeImport  = "github.com/casemark/casedev-go/pkg/shape"
	clientImport = "github.com/casemark/casedev-go/pkg/client"
)

// Option configures Generate.
type Option func(*config)

type config struct {
	pkg        string
	source     string
	operations []openapi.Operation
	templates  fs.FS
}

// WithPackage sets the package clause of the generated file.
func WithPackage(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.pkg = trimmed
		}
	}
}

// WithSource records the input location in the generated header.
func WithSource(location string) Option {
	return func(cfg *config) {
		cfg.source = strings.TrimSpace(location)
	}
}

// WithSpec emits an endpoint variable for every operation of spec.
func WithSpec(spec openapi.Spec) Option {
	return func(cfg *config) {
		for _, id := range spec.OperationIDs() {
			op, _ := spec.Operation(id)
			cfg.operations = append(cfg.operations, op)
		}
	}
}

// WithTemplates overrides the embedded templates. The set must provide
// shapes.tpl.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// Generate renders registry as gofmt-formatted Go source.
func Generate(registry *shape.Registry, options ...Option) ([]byte, error) {
	if registry == nil {
		return nil, fmt.Errorf("codegen: registry is nil")
	}
	cfg := &config{pkg: "shapes"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if !isIdent(cfg.pkg) {
		return nil, fmt.Errorf("codegen: invalid package name %q", cfg.pkg)
	}

	g := &generator{registry: registry, names: make(map[shape.Shape]string), idents: make(map[string]string)}
	for _, name := range registry.Names() {
		s, _ := registry.Lookup(name)
		if _, primitive := s.(*shape.Primitive); !primitive {
			g.names[s] = name
		}
	}

	shapes := make([]map[string]any, 0, registry.Len())
	for _, name := range registry.Names() {
		s, _ := registry.Lookup(name)
		ident, err := g.ident(name, "Shape")
		if err != nil {
			return nil, err
		}
		expr, err := g.expr(s, true)
		if err != nil {
			return nil, fmt.Errorf("codegen: %s: %w", name, err)
		}
		shapes = append(shapes, map[string]any{
			"name":  name,
			"ident": ident,
			"kind":  kindLabel(s),
			"expr":  expr,
		})
	}

	endpoints := make([]map[string]any, 0, len(cfg.operations))
	for _, op := range cfg.operations {
		ident, err := g.ident(op.ID, "Endpoint")
		if err != nil {
			return nil, err
		}
		result, _ := op.Result()
		for _, ref := range []string{op.Params, result} {
			if _, ok := registry.Lookup(ref); ref != "" && !ok {
				return nil, fmt.Errorf("codegen: operation %q references unknown shape %q", op.ID, ref)
			}
		}
		endpoints = append(endpoints, map[string]any{
			"ident":     ident,
			"method":    op.Method,
			"path":      op.Path,
			"params":    op.Params,
			"result":    result,
			"multipart": op.Multipart,
			"summary":   op.Summary,
		})
	}

	imports := []string{shapeImport}
	if len(endpoints) > 0 {
		imports = []string{clientImport, shapeImport}
	}

	files := cfg.templates
	if files == nil {
		files = defaultTemplates()
	}
	rendered, err := newEngine(files).render("shapes", pongo2.Context{
		"package":   cfg.pkg,
		"source":    cfg.source,
		"imports":   imports,
		"shapes":    shapes,
		"endpoints": endpoints,
	})
	if err != nil {
		return nil, err
	}
	src, err := format.Source([]byte(rendered))
	if err != nil {
		return nil, fmt.Errorf("codegen: format generated source: %w", err)
	}
	return src, nil
}

type generator struct {
	registry *shape.Registry
	names    map[shape.Shape]string
	// idents maps generated identifiers back to their source names.
	idents map[string]string
}

func (g *generator) ident(name, suffix string) (string, error) {
	ident := openapi.PascalCase(name)
	if ident == "" {
		return "", fmt.Errorf("codegen: cannot derive identifier from %q", name)
	}
	if !unicode.IsLetter([]rune(ident)[0]) {
		ident = "X" + ident
	}
	ident += suffix
	if owner, taken := g.idents[ident]; taken {
		return "", fmt.Errorf("codegen: %q and %q both map to identifier %s", owner, name, ident)
	}
	g.idents[ident] = name
	return ident, nil
}

var primitiveIdents = map[shape.Scalar]string{
	shape.ScalarString:   "shape.String",
	shape.ScalarInt:      "shape.Int",
	shape.ScalarFloat:    "shape.Float",
	shape.ScalarBool:     "shape.Bool",
	shape.ScalarDateTime: "shape.DateTime",
	shape.ScalarAny:      "shape.Any",
	shape.ScalarFile:     "shape.File",
}

// expr renders s as a Go expression. Registered shapes nested inside other
// shapes render as registry references so recursive models stay finite.
func (g *generator) expr(s shape.Shape, top bool) (string, error) {
	switch typed := s.(type) {
	case *shape.Primitive:
		ident, ok := primitiveIdents[typed.Scalar()]
		if !ok {
			return "", fmt.Errorf("unsupported primitive %s", typed)
		}
		return ident, nil
	case *shape.Ref:
		return "Registry.Ref(" + strconv.Quote(typed.Name()) + ")", nil
	}
	if name, ok := g.names[s]; ok && !top {
		return "Registry.Ref(" + strconv.Quote(name) + ")", nil
	}

	switch typed := s.(type) {
	case *shape.Enum:
		args := []string{strconv.Quote(typed.Name())}
		for _, v := range typed.Values() {
			lit, err := literal(v)
			if err != nil {
				return "", err
			}
			args = append(args, lit)
		}
		return "shape.MustEnum(" + strings.Join(args, ", ") + ")", nil
	case *shape.List:
		elem, err := g.expr(typed.Elem(), false)
		if err != nil {
			return "", err
		}
		return "shape.ListOf(" + elem + ")", nil
	case *shape.Map:
		elem, err := g.expr(typed.Elem(), false)
		if err != nil {
			return "", err
		}
		return "shape.MapOf(" + elem + ")", nil
	case *shape.Union:
		variants := make([]string, 0, typed.Len())
		for _, variant := range typed.Variants() {
			out, err := g.expr(variant, false)
			if err != nil {
				return "", err
			}
			variants = append(variants, out)
		}
		if typed.Name() == "" {
			return "shape.OneOf(" + strings.Join(variants, ", ") + ")", nil
		}
		return "shape.MustUnion(" + strconv.Quote(typed.Name()) + ", " + strings.Join(variants, ", ") + ")", nil
	case *shape.Model:
		return g.model(typed)
	default:
		return "", fmt.Errorf("unsupported shape %T", s)
	}
}

func (g *generator) model(m *shape.Model) (string, error) {
	if m.Len() == 0 {
		return "shape.MustModel(" + strconv.Quote(m.Name()) + ")", nil
	}
	var b strings.Builder
	b.WriteString("shape.MustModel(")
	b.WriteString(strconv.Quote(m.Name()))
	b.WriteString(",\n")
	for _, field := range m.Fields() {
		fieldShape, err := g.expr(field.Shape, false)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", field.Name, err)
		}
		ctor := "shape.Optional"
		if field.Required {
			ctor = "shape.Required"
		}
		fmt.Fprintf(&b, "\t%s(%s, %s)", ctor, strconv.Quote(field.Name), fieldShape)
		if field.WireName != "" && field.WireName != field.Name {
			fmt.Fprintf(&b, ".WithWire(%s)", strconv.Quote(field.WireName))
		}
		if field.Nullable {
			b.WriteString(".AsNullable()")
		}
		if field.HasDefault {
			lit, err := literal(field.Default)
			if err != nil {
				return "", fmt.Errorf("field %q default: %w", field.Name, err)
			}
			fmt.Fprintf(&b, ".WithDefault(%s)", lit)
		}
		b.WriteString(",\n")
	}
	b.WriteString(")")
	return b.String(), nil
}

// literal renders a literal or a JSON-like default value as Go source.
func literal(v any) (string, error) {
	switch typed := v.(type) {
	case nil:
		return "nil", nil
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			out, err := literal(item)
			if err != nil {
				return "", err
			}
			items = append(items, out)
		}
		return "[]any{" + strings.Join(items, ", ") + "}", nil
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			out, err := literal(typed[key])
			if err != nil {
				return "", err
			}
			entries = append(entries, strconv.Quote(key)+": "+out)
		}
		return "map[string]any{" + strings.Join(entries, ", ") + "}", nil
	}

	lit, ok := shape.Literal(v)
	if !ok {
		return "", fmt.Errorf("cannot render %T as a literal", v)
	}
	switch typed := lit.(type) {
	case string:
		return strconv.Quote(typed), nil
	case bool:
		return strconv.FormatBool(typed), nil
	case int64:
		return "int64(" + strconv.FormatInt(typed, 10) + ")", nil
	case float64:
		if math.IsInf(typed, 0) || math.IsNaN(typed) {
			return "", fmt.Errorf("cannot render %v as a literal", typed)
		}
		return "float64(" + strconv.FormatFloat(typed, 'g', -1, 64) + ")", nil
	default:
		return "", fmt.Errorf("cannot render %T as a literal", v)
	}
}

func kindLabel(s shape.Shape) string {
	switch s.(type) {
	case *shape.Ref:
		return "alias"
	default:
		return string(s.Kind())
	}
}

func isIdent(name string) bool {
	for i, r := range name {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return name != ""
}
