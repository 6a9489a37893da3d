package schema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/schema"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

const chatDeclarations = `
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
      - {name: metadata, type: map<string>}
      - {name: parent, type: Thread}
`

func mustParse(t *testing.T, raw string) *shape.Registry {
	t.Helper()
	registry, err := schema.ParseBytes([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return registry
}

func TestParseRegistersDeclarations(t *testing.T) {
	registry := mustParse(t, chatDeclarations)
	if diff := cmp.Diff([]string{"Content", "Message", "Role", "Thread"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	s, _ := registry.Lookup("Message")
	message, ok := s.(*shape.Model)
	if !ok {
		t.Fatalf("expected model, got %T", s)
	}
	maxTokens, ok := message.Field("maxTokens")
	if !ok {
		t.Fatalf("expected maxTokens field")
	}
	if maxTokens.Wire() != "max_tokens" || !maxTokens.Nullable || maxTokens.Required {
		t.Fatalf("unexpected field %+v", maxTokens)
	}
	if !maxTokens.HasDefault || maxTokens.Default != 256 {
		t.Fatalf("expected default 256, got %#v", maxTokens.Default)
	}

	obj := value.NewBuilder("Message").Set("content", "hi").Set("role", "user").Build()
	if v, _, _ := message.Value(obj, "maxTokens"); v != 256 {
		t.Fatalf("expected default fallback, got %#v", v)
	}
}

func TestParsedShapesConvert(t *testing.T) {
	registry := mustParse(t, chatDeclarations)
	thread, _ := registry.Lookup("Thread")

	_, err := convert.CoerceJSON(thread, []byte(`{"messages":[{"content":["a"],"role":"user"}],"parent":{"messages":[{"content":"x","role":"bot"}]}}`))
	var convErr *convert.Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if got := convErr.Path.String(); got != "parent.messages[0].role" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	registry := mustParse(t, `{"enums":{"Level":[1,2,3]},"models":{"Job":{"fields":[{"name":"level","type":"Level","required":true}]}}}`)
	job, _ := registry.Lookup("Job")
	got, err := convert.CoerceJSON(job, []byte(`{"level":2}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if v, _ := got.(value.Object).Get("level"); v != int64(2) {
		t.Fatalf("expected level 2, got %#v", v)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "unknown type", raw: "models:\n  A:\n    fields:\n      - {name: b, type: Missing}\n", want: `unknown type "Missing"`},
		{name: "unknown key", raw: "modles: {}\n", want: "field modles not found"},
		{name: "duplicate name", raw: "enums:\n  A: [x]\nmodels:\n  A:\n    fields: []\n", want: `already declared`},
		{name: "bad expression", raw: "unions:\n  U: [list<string]\n", want: `expected ">"`},
		{name: "duplicate wire", raw: "models:\n  A:\n    fields:\n      - {name: a, wire: x, type: string}\n      - {name: b, wire: x, type: string}\n", want: `duplicate wire name "x"`},
		{name: "primitive shadow", raw: "enums:\n  string: [x]\n", want: "shadows a primitive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseBytes([]byte(tt.raw))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	registry := mustParse(t, chatDeclarations)
	decls, err := schema.Describe(registry)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	encoded, err := schema.Encode(decls)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := schema.ParseBytes(encoded)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, encoded)
	}
	redescribed, err := schema.Describe(again)
	if err != nil {
		t.Fatalf("describe again: %v", err)
	}
	if diff := cmp.Diff(summarize(decls), summarize(redescribed)); diff != "" {
		t.Fatalf("declarations drifted (-want +got):\n%s", diff)
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]string{
		"string":                     "string",
		"integer":                    "int",
		"list< map<float> >":         "list<map<float>>",
		"union<string|list<string>>": "union<string|list<string>>",
	}
	for input, want := range tests {
		s, err := schema.ParseType(input, nil)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got := s.String(); got != want {
			t.Fatalf("parse %q: expected %s, got %s", input, want, got)
		}
	}
}

// summarize drops yaml nodes so declarations compare structurally.
func summarize(decls schema.Declarations) map[string]any {
	out := map[string]any{
		"enums":  decls.Enums,
		"unions": decls.Unions,
	}
	for name, model := range decls.Models {
		fields := make([]string, 0, len(model.Fields))
		for _, field := range model.Fields {
			def, _ := field.DefaultValue()
			fields = append(fields, strings.Join([]string{
				field.Name, field.Wire, field.Type,
				boolText(field.Required), boolText(field.Nullable), fmtAny(def),
			}, "/"))
		}
		out["model:"+name] = fields
	}
	return out
}

func boolText(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func fmtAny(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
