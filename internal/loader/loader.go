// Package loader fetches declaration and OpenAPI documents for schema.Loader.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/casemark/casedev-go/pkg/schema"
)

// MaxDocumentSize caps how much of a document is read from any source.
const MaxDocumentSize = 32 << 20

// ErrHTTPDisabled is returned for URL sources unless an HTTP client or the
// HTTP fallback was configured.
var ErrHTTPDisabled = errors.New("loader: http support disabled")

type fetcher func(ctx context.Context, location string) ([]byte, error)

// Loader implements schema.Loader with one fetch strategy per source kind.
// Construction helpers live in the root casedev package.
type Loader struct {
	fetchers map[schema.SourceKind]fetcher
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	l := &Loader{fetchers: map[schema.SourceKind]fetcher{
		schema.SourceKindFile: readFile,
	}}
	if options.FileSystem != nil {
		files := options.FileSystem
		l.fetchers[schema.SourceKindFS] = func(_ context.Context, name string) ([]byte, error) {
			f, err := files.Open(name)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return readAll(f)
		}
	}
	if client := httpClient(options); client != nil {
		l.fetchers[schema.SourceKindURL] = func(ctx context.Context, url string) ([]byte, error) {
			return fetchURL(ctx, client, url, options.RequestTimeout)
		}
	}
	if len(options.Inline) > 0 {
		inline := options.Inline
		l.fetchers[schema.SourceKindInline] = func(_ context.Context, name string) ([]byte, error) {
			payload, ok := inline[name]
			if !ok {
				return nil, fmt.Errorf("no inline payload named %q", name)
			}
			return payload, nil
		}
	}
	return l
}

func httpClient(options schema.LoaderOptions) *http.Client {
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		return &clone
	case options.AllowHTTPFallback:
		return &http.Client{Timeout: options.RequestTimeout}
	default:
		return nil
	}
}

// Load fetches the document behind src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}
	if src.Location() == "" {
		return schema.Document{}, fmt.Errorf("loader: %s source has no location", src.Kind())
	}

	fetch, ok := l.fetchers[src.Kind()]
	if !ok {
		switch src.Kind() {
		case schema.SourceKindURL:
			return schema.Document{}, ErrHTTPDisabled
		case schema.SourceKindFS:
			return schema.Document{}, errors.New("loader: filesystem is not configured")
		case schema.SourceKindInline:
			return schema.Document{}, fmt.Errorf("loader: no inline payload named %q", src.Location())
		default:
			return schema.Document{}, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
		}
	}
	data, err := fetch(ctx, src.Location())
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

func readFile(_ context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readAll(f)
}

func fetchURL(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readAll(resp.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}
