// Package testsupport holds fixtures and helpers shared by the package tests.
package testsupport

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/schema"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// ChatDeclarations declares the chat shapes used across tests: a Role enum,
// a string | list<string> Content union, a Message model with a nullable
// wire-renamed field carrying a default, and a recursive Thread model.
const ChatDeclarations = `
enums:
  Role: [system, user, assistant]
unions:
  Content: [string, list<string>]
models:
  Message:
    fields:
      - {name: content, type: Content, required: true}
      - {name: role, type: Role, required: true}
      - {name: maxTokens, wire: max_tokens, type: int, nullable: true, default: 256}
  Thread:
    fields:
      - {name: messages, type: list<Message>, required: true}
      - {name: parent, type: Thread}
`

// Document wraps raw in an inline document named name.
func Document(t *testing.T, name, raw string) schema.Document {
	t.Helper()
	doc, err := schema.NewDocument(schema.SourceInline(name), []byte(raw))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

// MustRegistry parses declarations into a registry.
func MustRegistry(t *testing.T, declarations string) *shape.Registry {
	t.Helper()
	registry, err := schema.ParseBytes([]byte(declarations))
	if err != nil {
		t.Fatalf("parse declarations: %v", err)
	}
	return registry
}

// MustLookup returns a registered shape, failing the test when it is absent.
func MustLookup(t *testing.T, registry *shape.Registry, name string) shape.Shape {
	t.Helper()
	s, ok := registry.Lookup(name)
	if !ok {
		t.Fatalf("shape %q is not registered", name)
	}
	return s
}

// MustDump dumps v and returns the wire JSON.
func MustDump(t *testing.T, s shape.Shape, v any) string {
	t.Helper()
	out, _, err := convert.DumpJSON(s, v)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	return string(out)
}

// ObjectComparer lets cmp compare value.Object trees by content.
var ObjectComparer = cmp.Comparer(func(a, b value.Object) bool {
	return a.Equal(b)
})

// Diff is cmp.Diff with ObjectComparer applied.
func Diff(want, got any) string {
	return cmp.Diff(want, got, ObjectComparer)
}
