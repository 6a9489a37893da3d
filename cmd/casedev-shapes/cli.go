package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/casemark/casedev-go"
	pkgopenapi "github.com/casemark/casedev-go/pkg/openapi"
	"github.com/casemark/casedev-go/pkg/schema"
	"github.com/casemark/casedev-go/pkg/shape"
)

// errInvalid marks a payload that failed validation; the report has already
// been printed.
var errInvalid = errors.New("payload is invalid")

func run(args []string, e *env) int {
	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first, e)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "casedev-shapes"
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		switch {
		case errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp:
			fmt.Fprintln(e.stdout, err)
			return 0
		case errors.Is(err, errInvalid):
			return 1
		default:
			fmt.Fprintln(e.stderr, "casedev-shapes:", err)
			return 2
		}
	}
	return 0
}

func (o SourceOptions) load(ctx context.Context) (pkgopenapi.Spec, error) {
	location := strings.TrimSpace(o.Shapes)
	if location == "" {
		return pkgopenapi.Spec{}, errors.New("declarations must be provided via -s/--shapes or CASEDEV_SHAPES")
	}
	var src schema.Source
	var options []schema.LoaderOption
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		src = schema.SourceFromURL(location)
		options = append(options, schema.WithHTTPFallback(o.Timeout))
	} else {
		src = schema.SourceFromFile(location)
	}
	spec, err := casedev.LoadShapes(ctx, src, options...)
	if err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("load %s: %w", location, err)
	}
	return spec, nil
}

// lookup resolves a shape name or type expression such as "list<Message>".
func lookup(registry *shape.Registry, expr string) (shape.Shape, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("shape must be provided via -m/--model")
	}
	s, err := schema.ParseType(expr, registry.Lookup)
	if err != nil {
		return nil, err
	}
	if ref, ok := s.(*shape.Ref); ok {
		if target, found := ref.Resolve(); found {
			return target, nil
		}
	}
	return s, nil
}

// readPayload reads the named file, or stdin for "" and "-".
func readPayload(e *env, args []string) ([]byte, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one payload file, got %d", len(args))
	}
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(args[0])
}
