package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
)

// Client executes typed API calls.
type Client struct {
	transport Transport
	logger    *log.Logger
}

// New constructs a Client. Without WithTransport it sends requests over HTTP.
func New(options ...Option) *Client {
	cfg := NewOptions(options...)
	transport := cfg.Transport
	if transport == nil {
		transport = newHTTPTransport(cfg)
	}
	return &Client{transport: transport, logger: cfg.Logger}
}

// Endpoint describes one API operation.
type Endpoint struct {
	Method string
	// Path may contain "{name}" placeholders filled by Call.
	Path   string
	Params shape.Shape
	Result shape.Shape
	// Multipart forces a form-data body even when no file is present.
	Multipart bool
}

// Call executes ep, substituting pathArgs into its placeholders in order.
func (c *Client) Call(ctx context.Context, ep Endpoint, params any, pathArgs ...string) (any, error) {
	path, err := ExpandPath(ep.Path, pathArgs...)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, ep.Method, path, ep.Params, params, ep.Result, ep.Multipart)
}

// Execute dumps params against paramsShape, sends the request and coerces
// the response against resultShape. Either shape may be nil: a nil params
// shape sends no body and a nil result shape discards the response body.
func (c *Client) Execute(ctx context.Context, method, path string, paramsShape shape.Shape, params any, resultShape shape.Shape) (any, error) {
	return c.execute(ctx, method, path, paramsShape, params, resultShape, false)
}

func (c *Client) execute(ctx context.Context, method, path string, paramsShape shape.Shape, params any, resultShape shape.Shape, multipart bool) (any, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	req := &Request{Method: method, Path: path, CanRetry: true}

	if paramsShape != nil {
		dumped, err := convert.Dump(paramsShape, params)
		if err != nil {
			return nil, fmt.Errorf("client: %s %s: params: %w", method, path, err)
		}
		req.CanRetry = dumped.CanRetry
		if bodyless(method) {
			query, err := queryValues(dumped.Value)
			if err != nil {
				return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
			}
			req.Query = query
		} else {
			req.Body = dumped.Value
			req.Multipart = multipart || hasFile(dumped.Value)
		}
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(method, path, resp)
	}
	if resultShape == nil {
		return nil, nil
	}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil, fmt.Errorf("client: %s %s: empty response body", method, path)
	}
	result, err := convert.CoerceJSON(resultShape, resp.Body)
	if err != nil {
		c.logf("client: %s %s: response did not match %s", method, path, resultShape)
		return nil, fmt.Errorf("client: %s %s: response: %w", method, path, err)
	}
	return result, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

func bodyless(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete || method == http.MethodHead
}

// queryValues flattens a dumped object into query parameters. Lists repeat
// their key; nested objects are JSON encoded.
func queryValues(tree any) (url.Values, error) {
	fields, ok := tree.(*ordered.Map)
	if !ok {
		return nil, fmt.Errorf("query parameters must be an object, got %T", tree)
	}
	values := url.Values{}
	var failed error
	fields.Range(func(key string, v any) bool {
		switch typed := v.(type) {
		case nil:
		case []any:
			for _, item := range typed {
				values.Add(key, formField(item))
			}
		case *ordered.Map:
			data, err := ordered.Encode(typed)
			if err != nil {
				failed = err
				return false
			}
			values.Set(key, string(data))
		default:
			values.Set(key, formField(typed))
		}
		return true
	})
	return values, failed
}

// ExpandPath replaces "{name}" placeholders with args in order. Arguments are
// path-escaped.
func ExpandPath(template string, args ...string) (string, error) {
	var b strings.Builder
	rest := template
	used := 0
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("client: path %q: unterminated placeholder", template)
		}
		if used >= len(args) {
			return "", fmt.Errorf("client: path %q: missing argument for %s", template, rest[start:start+end+1])
		}
		b.WriteString(rest[:start])
		b.WriteString(url.PathEscape(args[used]))
		used++
		rest = rest[start+end+1:]
	}
	if used != len(args) {
		return "", fmt.Errorf("client: path %q: %d arguments for %d placeholders", template, len(args), used)
	}
	return b.String(), nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// ErrStatus is matched by every *APIError.
var ErrStatus = errors.New("client: unexpected status")

func (e *APIError) Is(target error) bool {
	return target == ErrStatus
}

func newAPIError(method, path string, resp *Response) *APIError {
	apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: resp.Body}
	if gjson.ValidBytes(resp.Body) {
		for _, key := range []string{"error.message", "message", "error", "detail"} {
			if result := gjson.GetBytes(resp.Body, key); result.Type == gjson.String {
				apiErr.Message = result.String()
				break
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
