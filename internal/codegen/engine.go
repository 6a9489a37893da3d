package codegen

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embedded embed.FS

var registerFilters sync.Once

// engine renders pongo2 templates from an fs.FS, caching parsed templates.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(files fs.FS) *engine {
	registerFilters.Do(registerDefaultFilters)
	return &engine{
		set:       pongo2.NewSet("codegen", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}
}

func defaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func (e *engine) render(name string, data pongo2.Context) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("codegen: engine is nil")
	}
	if !strings.HasSuffix(name, ".tpl") {
		name += ".tpl"
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(data, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("codegen: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("codegen: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("goquote") {
		_ = pongo2.RegisterFilter("goquote", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strconv.Quote(in.String())), nil
		})
	}
	if !pongo2.FilterExists("comment") {
		_ = pongo2.RegisterFilter("comment", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.Join(strings.Fields(in.String()), " ")), nil
		})
	}
}
