// Package casedev wires the shape loaders, the OpenAPI importer and the API
// client together. Most callers only need NewClient; tooling that works with
// declaration files or OpenAPI documents uses LoadShapes.
package casedev

import (
	"context"
	"fmt"

	internalloader "github.com/casemark/casedev-go/internal/loader"
	internalparser "github.com/casemark/casedev-go/internal/openapi/parser"
	"github.com/casemark/casedev-go/pkg/api"
	"github.com/casemark/casedev-go/pkg/client"
	pkgopenapi "github.com/casemark/casedev-go/pkg/openapi"
	"github.com/casemark/casedev-go/pkg/schema"
)

// NewLoader constructs a loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalloader.New(schema.NewLoaderOptions(options...))
}

// NewParser constructs an OpenAPI parser backed by kin-openapi.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalparser.New(pkgopenapi.NewParserOptions(options...))
}

// NewClient returns the API services over an HTTP client.
func NewClient(options ...client.Option) *api.Client {
	return api.NewClient(options...)
}

// ParseShapes builds a registry from a loaded document. OpenAPI and Swagger
// documents go through the OpenAPI parser; anything else is read as a
// declaration file and yields a Spec without operations.
func ParseShapes(ctx context.Context, doc schema.Document, options ...pkgopenapi.ParserOption) (pkgopenapi.Spec, error) {
	if pkgopenapi.Detect(doc.Raw()) {
		return NewParser(options...).Parse(ctx, doc)
	}
	registry, err := schema.Parse(doc)
	if err != nil {
		return pkgopenapi.Spec{}, err
	}
	return pkgopenapi.Spec{
		Title:      doc.Location(),
		Registry:   registry,
		Operations: map[string]pkgopenapi.Operation{},
	}, nil
}

// LoadShapes loads src and parses it with ParseShapes.
func LoadShapes(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (pkgopenapi.Spec, error) {
	if src == nil {
		return pkgopenapi.Spec{}, fmt.Errorf("casedev: source is nil")
	}
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return pkgopenapi.Spec{}, err
	}
	return ParseShapes(ctx, doc)
}
