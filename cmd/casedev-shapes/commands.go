package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"

	"github.com/casemark/casedev-go/internal/codegen"
	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/prompt"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/validation"
)

// ValidateCmd prints a validation report and exits 1 when invalid.
type ValidateCmd struct {
	SourceOptions
	Model string `short:"m" long:"model" description:"Shape name or type expression"`

	env *env
}

func (c *ValidateCmd) Execute(args []string) error {
	ctx := context.Background()
	spec, err := c.load(ctx)
	if err != nil {
		return err
	}
	s, err := lookup(spec.Registry, c.Model)
	if err != nil {
		return err
	}
	raw, err := readPayload(c.env, args)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	result := validation.ValidatePayload(s, raw)
	encoder := json.NewEncoder(c.env.stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return err
	}
	if !result.Valid {
		return errInvalid
	}
	return nil
}

// DumpCmd coerces a payload and dumps it again, printing the canonical wire
// form: declared key order, unknown keys removed.
type DumpCmd struct {
	SourceOptions
	Model string `short:"m" long:"model" description:"Shape name or type expression"`

	env *env
}

func (c *DumpCmd) Execute(args []string) error {
	ctx := context.Background()
	spec, err := c.load(ctx)
	if err != nil {
		return err
	}
	s, err := lookup(spec.Registry, c.Model)
	if err != nil {
		return err
	}
	raw, err := readPayload(c.env, args)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	typed, err := convert.CoerceJSON(s, raw)
	if err != nil {
		return err
	}
	out, _, err := convert.DumpJSON(s, typed)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.env.stdout, string(out))
	return err
}

// GenCmd writes Go declarations for every shape and operation.
type GenCmd struct {
	SourceOptions
	Package string `short:"p" long:"package" default:"shapes" description:"Package name of the generated file"`
	Output  string `short:"o" long:"output" description:"Output file (stdout if empty)"`

	env *env
}

func (c *GenCmd) Execute(_ []string) error {
	ctx := context.Background()
	spec, err := c.load(ctx)
	if err != nil {
		return err
	}
	src, err := codegen.Generate(spec.Registry,
		codegen.WithPackage(c.Package),
		codegen.WithSource(c.Shapes),
		codegen.WithSpec(spec),
	)
	if err != nil {
		return err
	}
	if c.Output == "" {
		_, err := c.env.stdout.Write(src)
		return err
	}
	if err := os.WriteFile(c.Output, src, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(c.env.stderr, "wrote %s (%d shapes, %d endpoints)\n", c.Output, spec.Registry.Len(), len(spec.Operations))
	return nil
}

// PromptCmd asks for each field of a model and prints the dumped JSON.
type PromptCmd struct {
	SourceOptions
	Model string `short:"m" long:"model" required:"true" description:"Model name"`

	env    *env
	driver prompt.Driver
}

func (c *PromptCmd) Execute(_ []string) error {
	ctx := context.Background()
	spec, err := c.load(ctx)
	if err != nil {
		return err
	}
	s, err := lookup(spec.Registry, c.Model)
	if err != nil {
		return err
	}
	model, ok := s.(*shape.Model)
	if !ok {
		return fmt.Errorf("%s is a %s, not a model", c.Model, s.Kind())
	}
	driver := c.driver
	if driver == nil {
		// Questions go to stderr so the dumped payload alone reaches stdout.
		driver = prompt.NewSurveyDriver(c.env.stderr, survey.WithStdio(os.Stdin, os.Stderr, os.Stderr))
	}
	obj, err := prompt.New(prompt.WithDriver(driver)).Build(ctx, model)
	if err != nil {
		return err
	}
	out, _, err := convert.DumpJSON(model, obj)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.env.stdout, string(out))
	return err
}
