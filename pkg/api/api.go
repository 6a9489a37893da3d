// Package api declares the case.dev resources as shapes and exposes one
// service per API area on top of client.Client.
//
// Requests are value.Object values built with value.New(...).With(...); the
// field names are the in-memory names of the corresponding *Shape model.
// Responses come back as value.Object values coerced against the result
// shape, so unknown enum literals and missing required fields surface as
// *convert.Error values instead of zero values.
package api

import (
	"context"
	"fmt"

	"github.com/casemark/casedev-go/pkg/client"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// Registry holds every shape declared by this package.
var Registry = shape.NewRegistry()

func register(shapes map[string]shape.Shape) {
	for name, s := range shapes {
		Registry.MustRegister(name, s)
	}
}

// Client groups the API services.
type Client struct {
	LLM         *LLMService
	Vault       *VaultService
	Translation *TranslationService
	Payments    *PaymentService
}

// New wires every service to c.
func New(c *client.Client) *Client {
	return &Client{
		LLM:         &LLMService{client: c},
		Vault:       &VaultService{client: c},
		Translation: &TranslationService{client: c},
		Payments:    &PaymentService{client: c},
	}
}

// NewClient builds the underlying client.Client from options.
func NewClient(options ...client.Option) *Client {
	return New(client.New(options...))
}

func call(ctx context.Context, c *client.Client, ep client.Endpoint, params any, pathArgs ...string) (value.Object, error) {
	if c == nil {
		return value.Object{}, fmt.Errorf("api: %s %s: client is nil", ep.Method, ep.Path)
	}
	result, err := c.Call(ctx, ep, params, pathArgs...)
	if err != nil {
		return value.Object{}, err
	}
	obj, ok := result.(value.Object)
	if !ok {
		return value.Object{}, fmt.Errorf("api: %s %s: unexpected result %T", ep.Method, ep.Path, result)
	}
	return obj, nil
}
