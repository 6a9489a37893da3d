package client

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.case.dev"

// Options configures a Client and its default HTTP transport.
type Options struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
	// MaxRetries bounds additional attempts for retryable failures
	// (429, 5xx, transport errors) of replayable requests.
	MaxRetries int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// Transport replaces the HTTP transport entirely.
	Transport Transport
	// Logger receives retry diagnostics; nil disables logging.
	Logger *log.Logger
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(raw string) Option {
	return func(opts *Options) {
		opts.BaseURL = strings.TrimRight(strings.TrimSpace(raw), "/")
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(opts *Options) {
		opts.APIKey = strings.TrimSpace(key)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(opts *Options) {
		opts.UserAgent = agent
	}
}

// WithHTTPClient injects the *http.Client used by the HTTP transport.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithMaxRetries bounds retries of replayable requests.
func WithMaxRetries(n int) Option {
	return func(opts *Options) {
		if n >= 0 {
			opts.MaxRetries = n
		}
	}
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(opts *Options) {
		if d >= 0 {
			opts.RetryDelay = d
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(transport Transport) Option {
	return func(opts *Options) {
		opts.Transport = transport
	}
}

// WithLogger enables retry logging.
func WithLogger(logger *log.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{
		BaseURL:    DefaultBaseURL,
		UserAgent:  "casedev-go",
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
