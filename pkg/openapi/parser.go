package openapi

import (
	"context"

	"github.com/casemark/casedev-go/pkg/schema"
)

// Parser imports an OpenAPI document: components.schemas become registered
// shapes and paths become Operations.
type Parser interface {
	Parse(ctx context.Context, doc schema.Document) (Spec, error)
}

// ParserOptions exposes the importer toggles.
type ParserOptions struct {
	// ResolveReferences validates the document and resolves $ref pointers
	// before conversion. Defaults to true.
	ResolveReferences bool

	// AllowPartialDocuments accepts component-only documents without paths.
	// Defaults to true: most shape documents only carry components.
	AllowPartialDocuments bool

	// FieldName maps a wire property name to the in-memory field name.
	// Defaults to CamelCase.
	FieldName func(wire string) string
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles validation and reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// WithPartialDocuments toggles support for component-only documents.
func WithPartialDocuments(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowPartialDocuments = enabled
	}
}

// WithFieldNames overrides the wire to in-memory field name mapping.
func WithFieldNames(fn func(wire string) string) ParserOption {
	return func(opts *ParserOptions) {
		if fn != nil {
			opts.FieldName = fn
		}
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		ResolveReferences:     true,
		AllowPartialDocuments: true,
		FieldName:             CamelCase,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
