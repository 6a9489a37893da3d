package openapi

import (
	"errors"
	"sort"
	"strings"

	"github.com/casemark/casedev-go/pkg/shape"
)

// Operation is the subset of OpenAPI operation metadata needed to call an
// endpoint through the client: the route plus the names of the registered
// shapes for its request body and responses.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	// Params names the request body shape; empty when the operation takes
	// no body.
	Params string
	// Multipart is set when the request body is declared as
	// multipart/form-data.
	Multipart bool
	// Responses maps a status code ("200", "2XX", "default") to a shape name.
	Responses map[string]string
}

// NewOperation validates core fields and initialises the responses map.
func NewOperation(id, method, path string) (Operation, error) {
	if id == "" {
		return Operation{}, errors.New("openapi: operation id is required")
	}
	if method == "" {
		return Operation{}, errors.New("openapi: operation method is required")
	}
	if path == "" {
		return Operation{}, errors.New("openapi: operation path is required")
	}
	return Operation{
		ID:        id,
		Method:    strings.ToUpper(method),
		Path:      path,
		Responses: make(map[string]string),
	}, nil
}

// Result returns the shape name of the success response, preferring 200,
// then 201, then any other 2xx code, then "default".
func (op Operation) Result() (string, bool) {
	for _, code := range []string{"200", "201"} {
		if name, ok := op.Responses[code]; ok {
			return name, true
		}
	}
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if strings.HasPrefix(code, "2") {
			return op.Responses[code], true
		}
	}
	name, ok := op.Responses["default"]
	return name, ok
}

// Spec is the result of importing a document.
type Spec struct {
	Title      string
	Version    string
	Registry   *shape.Registry
	Operations map[string]Operation
}

// Operation looks an operation up by id.
func (s Spec) Operation(id string) (Operation, bool) {
	op, ok := s.Operations[id]
	return op, ok
}

// OperationIDs lists operation ids in ascending order.
func (s Spec) OperationIDs() []string {
	ids := make([]string, 0, len(s.Operations))
	for id := range s.Operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
