package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/casemark/casedev-go/pkg/ordered"
)

// Request is a dumped API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is the dumped wire tree; nil sends no body.
	Body any
	// Multipart sends Body as multipart/form-data instead of JSON.
	Multipart bool
	// CanRetry reports whether Body can be sent more than once.
	CanRetry bool
}

// Response is the raw outcome of a request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends requests. Implementations must honour Request.CanRetry:
// a request whose body is one-shot is attempted at most once.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	baseURL    string
	apiKey     string
	userAgent  string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *log.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport constructs an HTTP transport.
func NewHTTPTransport(options ...Option) *HTTPTransport {
	return newHTTPTransport(NewOptions(options...))
}

func newHTTPTransport(cfg Options) *HTTPTransport {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPTransport{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		client:     client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Do sends req, retrying 429, 5xx and transport failures when the body is
// replayable. The final response is returned whatever its status.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("client: request is nil")
	}
	attempts := 1
	if req.CanRetry {
		attempts += t.maxRetries
	}

	for attempt := 1; ; attempt++ {
		resp, err := t.send(ctx, req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		retryable := err != nil || retryableStatus(resp.StatusCode)
		if !retryable {
			return resp, nil
		}
		if attempt >= attempts {
			if !req.CanRetry && t.maxRetries > 0 {
				t.logf("client: %s %s: not retrying, request body is one-shot", req.Method, req.Path)
			}
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
		t.logf("client: %s %s: attempt %d/%d failed (%s), retrying", req.Method, req.Path, attempt, attempts, failure(resp, err))
		if err := sleep(ctx, t.retryDelay); err != nil {
			return nil, err
		}
	}
}

func (t *HTTPTransport) send(ctx context.Context, req *Request) (*Response, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	target := t.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if t.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodeBody(req *Request) (io.Reader, string, error) {
	if req.Body == nil {
		return nil, "", nil
	}
	if req.Multipart {
		return encodeMultipart(req.Body)
	}
	data, err := ordered.Encode(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("client: encode body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func failure(resp *Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return http.StatusText(resp.StatusCode)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *HTTPTransport) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}
