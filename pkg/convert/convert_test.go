package convert_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

var (
	role    = shape.MustEnum("Role", "system", "user", "assistant")
	message = shape.MustModel("Message",
		shape.Required("content", shape.String),
		shape.Required("role", role),
	)
)

type testRole string

func asError(t *testing.T, err error) *convert.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected conversion error, got nil")
	}
	var convErr *convert.Error
	if !errors.As(err, &convErr) {
		t.Fatalf("expected *convert.Error, got %T: %v", err, err)
	}
	return convErr
}

func TestMessageRoundTrip(t *testing.T) {
	coerced, err := convert.CoerceJSON(message, []byte(`{"content": "hi", "role": "user"}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	want := value.NewBuilder("Message").Set("content", "hi").Set("role", "user").Build()
	if diff := cmp.Diff(want, coerced); diff != "" {
		t.Fatalf("coerced mismatch (-want +got):\n%s", diff)
	}

	data, canRetry, err := convert.DumpJSON(message, coerced)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if got := string(data); got != `{"content":"hi","role":"user"}` {
		t.Fatalf("unexpected dump %s", got)
	}
	if !canRetry {
		t.Fatalf("expected plain body to be retryable")
	}
}

func TestInvalidEnumReportsPathAndAllowed(t *testing.T) {
	_, err := convert.CoerceJSON(message, []byte(`{"role": "bot"}`))
	convErr := asError(t, err)

	if convErr.Kind != convert.KindInvalidEnumValue {
		t.Fatalf("expected invalid enum kind, got %s", convErr.Kind)
	}
	if !errors.Is(err, convert.ErrInvalidEnumValue) {
		t.Fatalf("expected errors.Is to match ErrInvalidEnumValue")
	}
	if got := convErr.Path.String(); got != "role" {
		t.Fatalf("expected path role, got %q", got)
	}
	if diff := cmp.Diff([]any{"system", "user", "assistant"}, convErr.Allowed); diff != "" {
		t.Fatalf("allowed mismatch (-want +got):\n%s", diff)
	}
	const want = `role: invalid enum value "bot" (allowed: [system,user,assistant])`
	if err.Error() != want {
		t.Fatalf("unexpected message:\nwant %s\ngot  %s", want, err.Error())
	}
}

func TestMissingRequiredField(t *testing.T) {
	_, err := convert.Coerce(message, map[string]any{"role": "user"})
	convErr := asError(t, err)
	if convErr.Kind != convert.KindMissingRequiredField || convErr.Field != "content" {
		t.Fatalf("expected missing content, got %v", convErr)
	}
	if !convErr.Path.IsRoot() {
		t.Fatalf("expected root path, got %q", convErr.Path.String())
	}
	if err.Error() != `missing required field "content"` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestUnionPicksFirstMatchingVariant(t *testing.T) {
	content := shape.OneOf(shape.String, shape.ListOf(shape.String))

	tests := []struct {
		name  string
		input string
		want  value.Union
	}{
		{name: "string", input: `"hello"`, want: value.Union{Index: 0, Variant: "string", Value: "hello"}},
		{name: "list", input: `["a","b"]`, want: value.Union{Index: 1, Variant: "list<string>", Value: []any{"a", "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.CoerceJSON(content, []byte(tt.input))
			if err != nil {
				t.Fatalf("coerce: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("union mismatch (-want +got):\n%s", diff)
			}
			data, _, err := convert.DumpJSON(content, got)
			if err != nil {
				t.Fatalf("dump: %v", err)
			}
			if string(data) != tt.input {
				t.Fatalf("expected %s, got %s", tt.input, data)
			}
		})
	}

	_, err := convert.CoerceJSON(content, []byte(`5`))
	convErr := asError(t, err)
	if convErr.Kind != convert.KindNoMatchingVariant {
		t.Fatalf("expected no matching variant, got %s", convErr.Kind)
	}
	if len(convErr.Variants) != 2 {
		t.Fatalf("expected one failure per variant, got %d", len(convErr.Variants))
	}
	const want = "no matching variant for union<string|list<string>> (string: expected string, got number; list<string>: expected list<string>, got number)"
	if err.Error() != want {
		t.Fatalf("unexpected message:\nwant %s\ngot  %s", want, err.Error())
	}
}

func TestUnionOrderIsSignificant(t *testing.T) {
	loose := shape.OneOf(shape.Any, shape.String)
	got, err := convert.Coerce(loose, "text")
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if got.(value.Union).Index != 0 {
		t.Fatalf("expected the first variant to win, got %#v", got)
	}

	numbers := shape.OneOf(shape.Int, shape.Float)
	dumped, err := convert.Dump(numbers, 2.5)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if dumped.Value != 2.5 {
		t.Fatalf("expected float variant to accept 2.5, got %#v", dumped.Value)
	}
}

func TestNestedPath(t *testing.T) {
	chat := shape.MustModel("Chat", shape.Required("messages", shape.ListOf(message)))
	_, err := convert.CoerceJSON(chat, []byte(`{"messages":[{"content":"a","role":"user"},{"content":"b","role":"bot"}]}`))
	convErr := asError(t, err)
	if got := convErr.Path.String(); got != "messages[1].role" {
		t.Fatalf("expected messages[1].role, got %q", got)
	}
	if got := convErr.Path.Pointer(); got != "/messages/1/role" {
		t.Fatalf("expected pointer /messages/1/role, got %q", got)
	}
}

func TestFirstErrorWins(t *testing.T) {
	pair := shape.MustModel("Pair",
		shape.Required("a", shape.String),
		shape.Required("b", shape.String),
	)
	tests := []struct {
		name string
		s    shape.Shape
		raw  string
		want string
	}{
		{name: "list reports first bad element", s: shape.ListOf(shape.Int), raw: `[1,"x","y"]`, want: "[1]"},
		{name: "map reports first bad key in input order", s: shape.MapOf(shape.Int), raw: `{"z":"x","a":"y"}`, want: "z"},
		{name: "model reports first declared field", s: pair, raw: `{"b":1,"a":2}`, want: "a"},
		{name: "value error beats missing field", s: pair, raw: `{"b":1}`, want: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert.CoerceJSON(tt.s, []byte(tt.raw))
			convErr := asError(t, err)
			if convErr.Kind != convert.KindTypeMismatch {
				t.Fatalf("expected type mismatch, got %v", err)
			}
			if diff := cmp.Diff(tt.want, convErr.Path.String()); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := convert.Dump(shape.ListOf(shape.String), []any{"ok", 1, 2})
	if got := asError(t, err).Path.String(); got != "[1]" {
		t.Fatalf("dump: expected [1], got %q", got)
	}
}

func TestAbsentAndNullSurviveRoundTrip(t *testing.T) {
	params := shape.MustModel("Params",
		shape.Required("prompt", shape.String),
		shape.Optional("maxTokens", shape.Int).WithWire("max_tokens").AsNullable(),
		shape.Optional("stop", shape.ListOf(shape.String)),
	)

	coerced, err := convert.CoerceJSON(params, []byte(`{"prompt":"p","max_tokens":null}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	obj := coerced.(value.Object)
	if !obj.IsNull("maxTokens") {
		t.Fatalf("expected maxTokens to be explicit null")
	}
	if obj.Has("stop") {
		t.Fatalf("expected stop to stay absent")
	}

	data, _, err := convert.DumpJSON(params, obj)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if string(data) != `{"prompt":"p","max_tokens":null}` {
		t.Fatalf("unexpected dump %s", data)
	}

	data, _, err = convert.DumpJSON(params, obj.Without("maxTokens"))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if string(data) != `{"prompt":"p"}` {
		t.Fatalf("unexpected dump %s", data)
	}
}

func TestNullRejectedForNonNullableField(t *testing.T) {
	_, err := convert.CoerceJSON(message, []byte(`{"content":null,"role":"user"}`))
	convErr := asError(t, err)
	if convErr.Kind != convert.KindTypeMismatch || convErr.Path.String() != "content" {
		t.Fatalf("expected type mismatch at content, got %v", convErr)
	}
	if convErr.Actual != "null" {
		t.Fatalf("expected actual null, got %q", convErr.Actual)
	}
}

func TestEmptyCollectionsStayNonNil(t *testing.T) {
	list, err := convert.CoerceJSON(shape.ListOf(shape.Int), []byte(`[]`))
	if err != nil {
		t.Fatalf("coerce list: %v", err)
	}
	if items, ok := list.([]any); !ok || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}

	m, err := convert.CoerceJSON(shape.MapOf(shape.String), []byte(`{}`))
	if err != nil {
		t.Fatalf("coerce map: %v", err)
	}
	if entries, ok := m.(*ordered.Map); !ok || entries == nil || entries.Len() != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", m)
	}

	dumped, err := convert.Dump(shape.ListOf(shape.String), []string{})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if items, ok := dumped.Value.([]any); !ok || items == nil {
		t.Fatalf("expected empty non-nil dump, got %#v", dumped.Value)
	}
}

func TestMapKeepsInsertionOrder(t *testing.T) {
	metadata := shape.MapOf(shape.String)
	coerced, err := convert.CoerceJSON(metadata, []byte(`{"z":"1","a":"2","m":"3"}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, coerced.(*ordered.Map).Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}

	_, err = convert.Coerce(metadata, map[string]any{"ok": "x", "a.b": 1})
	convErr := asError(t, err)
	if got := convErr.Path.String(); got != `["a.b"]` {
		t.Fatalf("expected quoted key path, got %q", got)
	}
}

func TestPrimitivesAreStrict(t *testing.T) {
	tests := []struct {
		name string
		s    shape.Shape
		raw  any
		want any
		fail bool
	}{
		{name: "int from json number", s: shape.Int, raw: json.Number("42"), want: int64(42)},
		{name: "int from integral float", s: shape.Int, raw: 7.0, want: int64(7)},
		{name: "int from integral decimal literal", s: shape.Int, raw: json.Number("1.0"), want: int64(1)},
		{name: "int from integral exponent literal", s: shape.Int, raw: json.Number("1e2"), want: int64(100)},
		{name: "int rejects fractional literal", s: shape.Int, raw: json.Number("1.5"), fail: true},
		{name: "int rejects fraction", s: shape.Int, raw: 2.5, fail: true},
		{name: "int rejects numeric string", s: shape.Int, raw: "5", fail: true},
		{name: "float widens int", s: shape.Float, raw: json.Number("3"), want: 3.0},
		{name: "float rejects string", s: shape.Float, raw: "3.5", fail: true},
		{name: "string rejects number", s: shape.String, raw: json.Number("1"), fail: true},
		{name: "bool rejects string", s: shape.Bool, raw: "true", fail: true},
		{name: "bool", s: shape.Bool, raw: false, want: false},
		{name: "any passes through", s: shape.Any, raw: []any{"x"}, want: []any{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.Coerce(tt.s, tt.raw)
			if tt.fail {
				if !errors.Is(err, convert.ErrTypeMismatch) {
					t.Fatalf("expected type mismatch, got %v (%#v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerce: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDateTime(t *testing.T) {
	got, err := convert.Coerce(shape.DateTime, "2024-05-01T10:30:00Z")
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if !got.(time.Time).Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	dumped, err := convert.Dump(shape.DateTime, want)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if dumped.Value != "2024-05-01T10:30:00Z" {
		t.Fatalf("unexpected dump %#v", dumped.Value)
	}
	if _, err := convert.Coerce(shape.DateTime, "yesterday"); !errors.Is(err, convert.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestEnumDumpAcceptsNamedConstant(t *testing.T) {
	dumped, err := convert.Dump(role, testRole("assistant"))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if dumped.Value != "assistant" {
		t.Fatalf("expected raw literal, got %#v", dumped.Value)
	}
	if _, err := convert.Dump(role, "Assistant"); !errors.Is(err, convert.ErrInvalidEnumValue) {
		t.Fatalf("expected case-sensitive mismatch, got %v", err)
	}

	levels := shape.MustEnum("Level", 1, 2, 3)
	got, err := convert.Coerce(levels, json.Number("2"))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if got != int64(2) {
		t.Fatalf("expected int64(2), got %#v", got)
	}
}

func TestDumpRejectsUnknownField(t *testing.T) {
	_, err := convert.Dump(message, map[string]any{"content": "hi", "role": "user", "rolee": "x"})
	convErr := asError(t, err)
	if convErr.Kind != convert.KindUnknownField || convErr.Field != "rolee" {
		t.Fatalf("expected unknown field rolee, got %v", convErr)
	}
	if !errors.Is(err, convert.ErrUnknownField) {
		t.Fatalf("expected errors.Is to match ErrUnknownField")
	}
}

func TestDumpRejectsOtherModel(t *testing.T) {
	other := value.NewBuilder("Other").Set("content", "hi").Set("role", "user").Build()
	if _, err := convert.Dump(message, other); !errors.Is(err, convert.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestCoerceKeepsExtras(t *testing.T) {
	obj, err := convert.CoerceObject(message, []byte(`{"content":"hi","role":"user","id":"msg_1"}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if diff := cmp.Diff([]string{"id"}, obj.ExtraKeys()); diff != "" {
		t.Fatalf("extras mismatch (-want +got):\n%s", diff)
	}
	data, _, err := convert.DumpJSON(message, obj)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if strings.Contains(string(data), "msg_1") {
		t.Fatalf("extras must not be dumped: %s", data)
	}
}

func TestWireNamesMapToFieldNames(t *testing.T) {
	params := shape.MustModel("Params", shape.Required("maxTokens", shape.Int).WithWire("max_tokens"))
	obj, err := convert.CoerceObject(params, []byte(`{"max_tokens":10}`))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if v, _ := obj.Get("maxTokens"); v != int64(10) {
		t.Fatalf("expected maxTokens 10, got %#v", v)
	}
	dumped, err := convert.Dump(params, map[string]any{"maxTokens": 5})
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if diff := cmp.Diff([]string{"max_tokens"}, dumped.Value.(*ordered.Map).Keys()); diff != "" {
		t.Fatalf("wire keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRefs(t *testing.T) {
	registry := shape.NewRegistry()
	registry.MustRegister("Node", shape.MustModel("Node",
		shape.Required("name", shape.String),
		shape.Optional("children", shape.ListOf(registry.Ref("Node"))),
	))
	node, _ := registry.Lookup("Node")

	_, err := convert.CoerceJSON(node, []byte(`{"name":"root","children":[{"name":"leaf","children":[{"name":3}]}]}`))
	convErr := asError(t, err)
	if got := convErr.Path.String(); got != "children[0].children[0].name" {
		t.Fatalf("unexpected path %q", got)
	}

	_, err = convert.Coerce(registry.Ref("Missing"), "x")
	if !errors.Is(err, convert.ErrUnresolvedReference) {
		t.Fatalf("expected unresolved reference, got %v", err)
	}
}

func TestNilShape(t *testing.T) {
	if _, err := convert.Coerce(nil, "x"); err == nil {
		t.Fatalf("expected error for nil shape")
	}
}

func TestModelAcceptsOrderedMapValue(t *testing.T) {
	wire := ordered.New(2)
	wire.Set("content", "hi")
	wire.Set("role", "user")

	coerced, err := convert.Coerce(message, *wire)
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if got, _ := coerced.(value.Object).Get("role"); got != "user" {
		t.Fatalf("expected role user, got %#v", got)
	}
	if _, err := convert.Dump(message, *wire); err != nil {
		t.Fatalf("dump: %v", err)
	}
}
