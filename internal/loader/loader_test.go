package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/casemark/casedev-go/pkg/schema"
)

const payload = "enums:\n  Role: [system, user]\n"

func TestLoaderSources(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.yaml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	l := New(schema.NewLoaderOptions(
		schema.WithFileSystem(fstest.MapFS{"decl/shapes.yaml": {Data: []byte(payload)}}),
		schema.WithHTTPFallback(0),
		schema.WithInline("stdin", []byte(payload)),
	))

	for _, src := range []schema.Source{
		schema.SourceFromFile(path),
		schema.SourceFromFS("decl/shapes.yaml"),
		schema.SourceFromURL(server.URL),
		schema.SourceInline("stdin"),
	} {
		doc, err := l.Load(ctx, src)
		if err != nil {
			t.Fatalf("load %s %s: %v", src.Kind(), src.Location(), err)
		}
		if string(doc.Raw()) != payload {
			t.Fatalf("load %s: unexpected payload %q", src.Kind(), doc.Raw())
		}
		if doc.Source() != src {
			t.Fatalf("load %s: source not retained", src.Kind())
		}
	}
}

func TestLoaderHTTPDisabledByDefault(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	_, err := l.Load(context.Background(), schema.SourceFromURL("https://example.com/shapes.yaml"))
	if err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}
}

func TestLoaderHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	l := New(schema.NewLoaderOptions(schema.WithHTTPClient(server.Client())))
	_, err := l.Load(context.Background(), schema.SourceFromURL(server.URL))
	if err == nil || !strings.Contains(err.Error(), "unexpected status 404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestLoaderFSRequiresFileSystem(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	if _, err := l.Load(context.Background(), schema.SourceFromFS("a.yaml")); err == nil {
		t.Fatalf("expected error without filesystem")
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(fstest.MapFS{})))
	if _, err := l.Load(ctx, schema.SourceFromFS("a.yaml")); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestLoaderInlineUnknownName(t *testing.T) {
	l := New(schema.NewLoaderOptions(schema.WithInline("stdin", []byte(payload))))
	_, err := l.Load(context.Background(), schema.SourceInline("other"))
	if err == nil || !strings.Contains(err.Error(), `no inline payload named "other"`) {
		t.Fatalf("expected unknown inline error, got %v", err)
	}
}
