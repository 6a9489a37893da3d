package main

import (
	"io"
	"os"
	"time"
)

// Options is the root of the command line. go-flags instantiates the
// subcommand named by the first argument.
type Options struct {
	Validate *ValidateCmd `command:"validate" description:"Validate a JSON payload against a shape"`
	Dump     *DumpCmd     `command:"dump"     description:"Coerce then dump a payload, printing canonical wire JSON"`
	Gen      *GenCmd      `command:"gen"      description:"Generate Go shape declarations"`
	Prompt   *PromptCmd   `command:"prompt"   description:"Build a model value interactively"`
}

// Init instantiates the sub-command referenced by the first positional
// argument so that go-flags can populate its fields.
func (o *Options) Init(firstArg string, e *env) {
	switch firstArg {
	case "validate":
		o.Validate = &ValidateCmd{env: e}
	case "dump":
		o.Dump = &DumpCmd{env: e}
	case "gen":
		o.Gen = &GenCmd{env: e}
	case "prompt":
		o.Prompt = &PromptCmd{env: e}
	}
}

// SourceOptions locate the declarations shared by every subcommand.
type SourceOptions struct {
	Shapes  string        `short:"s" long:"shapes" env:"CASEDEV_SHAPES" description:"Declaration file or OpenAPI document (path or URL)"`
	Timeout time.Duration `long:"timeout" default:"30s" description:"Timeout for remote documents"`
}

// env carries the process streams so commands can be exercised in tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newEnv() *env {
	return &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}
