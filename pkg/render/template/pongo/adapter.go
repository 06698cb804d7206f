// Package pongo backs the template.Renderer seam with a pongo2 template set.
package pongo

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formfill/pkg/render/template"
)

// Engine renders inline template content using pongo2, caching compiled
// templates by their source text.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

var _ template.Renderer = (*Engine)(nil)

// New constructs an Engine with an isolated template set.
func New() *Engine {
	return &Engine{
		set:       pongo2.NewSet("formfill", pongo2.MustNewLocalFileSystemLoader("")),
		templates: make(map[string]*pongo2.Template),
	}
}

// RenderString compiles (or reuses) the template content and executes it
// against data.
func (e *Engine) RenderString(content string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}

	tmpl, err := e.template(content)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template: %w", err)
	}

	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		ctx[key] = value
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("pongo: execute template: %w", err)
	}
	return buf.String(), nil
}

func (e *Engine) template(content string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[content]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := e.set.FromString(content)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.templates[content] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}
