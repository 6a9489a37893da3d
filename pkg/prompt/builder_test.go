package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/testsupport"
	"github.com/casemark/casedev-go/pkg/value"
)

type stubDriver struct {
	inputs       []string
	confirms     []bool
	selects      []int
	infoMessages []string
	prompts      []string
	inputPos     int
	confirmPos   int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, "input:"+cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, "confirm:"+cfg.Message)
	if s.confirmPos >= len(s.confirms) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirms[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, "select:"+cfg.Message)
	if s.selectPos >= len(s.selects) {
		return -1, errors.New("no select scripted")
	}
	val := s.selects[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

var messageShape = shape.MustModel("Message",
	shape.Required("role", shape.MustEnum("Role", "system", "user", "assistant")),
	shape.Required("content", shape.String),
	shape.Optional("maxTokens", shape.Int).WithWire("max_tokens").AsNullable().WithDefault(int64(256)),
)

func TestBuildMessage(t *testing.T) {
	driver := &stubDriver{
		selects:  []int{1},
		inputs:   []string{"hi", "abc", "128"},
		confirms: []bool{true, false},
	}
	obj, err := New(WithDriver(driver)).Build(context.Background(), messageShape)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := value.New("Message").With("role", "user").With("content", "hi").With("maxTokens", int64(128))
	if diff := testsupport.Diff(want, obj); diff != "" {
		t.Fatalf("object mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "maxTokens") {
		t.Fatalf("expected one parse error message, got %v", driver.infoMessages)
	}
	wantPrompts := []string{
		"select:role",
		"input:content",
		"confirm:Set maxTokens?",
		"confirm:Send maxTokens as null?",
		"input:maxTokens",
		"input:maxTokens",
	}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSkipsAndNulls(t *testing.T) {
	driver := &stubDriver{selects: []int{0}, inputs: []string{"x"}, confirms: []bool{true, true}}
	obj, err := New(WithDriver(driver)).Build(context.Background(), messageShape)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !obj.IsNull("maxTokens") {
		t.Fatalf("expected explicit null maxTokens")
	}

	driver = &stubDriver{selects: []int{0}, inputs: []string{"x"}, confirms: []bool{false}}
	obj, err = New(WithDriver(driver)).Build(context.Background(), messageShape)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if obj.Has("maxTokens") {
		t.Fatalf("declined optional field must stay absent")
	}
}

func TestBuildGivesUpAfterAttempts(t *testing.T) {
	m := shape.MustModel("Counter", shape.Required("count", shape.Int))
	driver := &stubDriver{inputs: []string{"a", "b"}}
	_, err := New(WithDriver(driver), WithAttempts(2)).Build(context.Background(), m)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestBuildCollections(t *testing.T) {
	registry := shape.NewRegistry()
	tag := shape.MustModel("Tag", shape.Required("name", shape.String))
	registry.MustRegister("Tag", tag)
	m := shape.MustModel("Doc",
		shape.Required("labels", shape.ListOf(shape.String)),
		shape.Required("levels", shape.ListOf(shape.MustEnum("", "low", "high"))),
		shape.Required("tags", shape.ListOf(registry.Ref("Tag"))),
		shape.Required("meta", shape.MapOf(shape.Int)),
		shape.Required("body", shape.OneOf(shape.Int, shape.String)),
	)
	driver := &stubDriver{
		inputs:   []string{"a, b", "high,low", "urgent", "pages", "3", "text"},
		confirms: []bool{true, false, true, false},
		selects:  []int{1},
	}
	obj, err := New(WithDriver(driver)).Build(context.Background(), m)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	labels, _ := obj.Get("labels")
	if diff := cmp.Diff([]any{"a", "b"}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	levels, _ := obj.Get("levels")
	if diff := cmp.Diff([]any{"high", "low"}, levels); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
	tags, _ := obj.Get("tags")
	name, _ := tags.([]any)[0].(value.Object).Get("name")
	if name != "urgent" {
		t.Fatalf("expected nested tag, got %v", name)
	}
	meta, _ := obj.Get("meta")
	pages, _ := meta.(*ordered.Map).Get("pages")
	if pages != int64(3) {
		t.Fatalf("expected pages 3, got %v", pages)
	}
	body, _ := obj.Get("body")
	if body != "text" {
		t.Fatalf("expected string variant, got %v", body)
	}
}

func TestBuildValidatesResult(t *testing.T) {
	m := shape.MustModel("Upload", shape.Required("file", shape.File))
	driver := &stubDriver{inputs: []string{"doc.txt"}}
	opener := func(path string) (value.File, error) {
		return value.File{Name: path}, nil
	}
	_, err := New(WithDriver(driver), WithFileOpener(opener)).Build(context.Background(), m)
	if !errors.Is(err, convert.ErrTypeMismatch) {
		t.Fatalf("expected file without body to fail validation, got %v", err)
	}
}
