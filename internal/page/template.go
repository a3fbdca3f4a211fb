// Package page renders the index and article pages from templates.
package page

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template is a parsed page template.
type Template interface {
	Render(data any) ([]byte, error)
}

// Engine parses template sources.
type Engine interface {
	Parse(name string, src []byte) (Template, error)
}

// HTMLEngine uses html/template. Fields are escaped according to their
// context, except values of type template.HTML which are emitted verbatim.
type HTMLEngine struct{}

// NewHTMLEngine returns the html/template engine.
func NewHTMLEngine() *HTMLEngine {
	return &HTMLEngine{}
}

// Parse satisfies Engine.
func (e *HTMLEngine) Parse(name string, src []byte) (Template, error) {
	tpl, err := template.New(name).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &htmlTemplate{tpl: tpl}, nil
}

type htmlTemplate struct {
	tpl *template.Template
}

func (t *htmlTemplate) Render(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", t.tpl.Name(), err)
	}
	return buf.Bytes(), nil
}
