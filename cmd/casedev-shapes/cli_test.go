package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/casemark/casedev-go/pkg/prompt"
	"github.com/casemark/casedev-go/pkg/testsupport"
	"github.com/casemark/casedev-go/pkg/validation"
)

const declarations = testsupport.ChatDeclarations

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testEnv(stdin string) (*env, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &env{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func TestValidateReportsIssues(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "chat.yaml", declarations)
	payload := writeFile(t, dir, "payload.json", `{"role":"bot","content":"hi"}`)

	e, stdout, _ := testEnv("")
	if code := run([]string{"validate", "-s", decl, "-m", "Message", payload}, e); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	var result validation.Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("decode report: %v\n%s", err, stdout)
	}
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Path != "role" {
		t.Fatalf("unexpected report %+v", result)
	}
}

func TestValidateReadsStdinAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CASEDEV_SHAPES", writeFile(t, dir, "chat.yaml", declarations))

	e, stdout, _ := testEnv(`[{"role":"user","content":"hi"}]`)
	if code := run([]string{"validate", "-m", "list<Message>"}, e); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stdout)
	}
	if !strings.Contains(stdout.String(), `"valid": true`) {
		t.Fatalf("expected valid report, got %s", stdout)
	}
}

func TestDumpPrintsCanonicalJSON(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "chat.yaml", declarations)

	e, stdout, stderr := testEnv(`{"max_tokens":null,"content":"hi","extra":1,"role":"user"}`)
	if code := run([]string{"dump", "-s", decl, "-m", "Message", "-"}, e); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if diff := cmp.Diff(`{"content":"hi","role":"user","max_tokens":null}`+"\n", stdout.String()); diff != "" {
		t.Fatalf("dump mismatch (-want +got):\n%s", diff)
	}
}

func TestGenWritesSource(t *testing.T) {
	dir := t.TempDir()
	decl := writeFile(t, dir, "chat.yaml", declarations)
	out := filepath.Join(dir, "shapes_gen.go")

	e, _, stderr := testEnv("")
	if code := run([]string{"gen", "-s", decl, "-p", "chat", "-o", out}, e); code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(src), "package chat") || !strings.Contains(string(src), "var MessageShape = shape.MustModel(") {
		t.Fatalf("unexpected generated source:\n%s", src)
	}
}

func TestMissingShapesIsAnError(t *testing.T) {
	t.Setenv("CASEDEV_SHAPES", "")
	e, _, stderr := testEnv("{}")
	if code := run([]string{"dump", "-m", "Message"}, e); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "CASEDEV_SHAPES") {
		t.Fatalf("expected hint about CASEDEV_SHAPES, got %q", stderr)
	}
}

type scriptedDriver struct {
	inputs   []string
	selects  []int
	confirms []bool
}

func (s *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func (s *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	v := s.selects[0]
	s.selects = s.selects[1:]
	return v, nil
}

func (s *scriptedDriver) Info(context.Context, string) error { return nil }

func TestPromptCommand(t *testing.T) {
	dir := t.TempDir()
	e, stdout, _ := testEnv("")
	cmd := &PromptCmd{
		SourceOptions: SourceOptions{Shapes: writeFile(t, dir, "chat.yaml", declarations)},
		Model:         "Message",
		env:           e,
		driver:        &scriptedDriver{selects: []int{0, 2}, inputs: []string{"hello"}, confirms: []bool{false}},
	}
	if err := cmd.Execute(nil); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if diff := cmp.Diff(`{"content":"hello","role":"assistant"}`+"\n", stdout.String()); diff != "" {
		t.Fatalf("prompt output mismatch (-want +got):\n%s", diff)
	}
}
