// Package markdown converts post sources into HTML fragments.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts raw markdown to an HTML fragment.
type Renderer interface {
	Render(source []byte) ([]byte, error)
}

// GoldmarkRenderer renders CommonMark with the strikethrough and table
// extensions. Raw HTML in the source is passed through untouched.
// A single instance is safe to reuse.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer constructs the renderer used for posts.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Table),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render satisfies Renderer.
func (r *GoldmarkRenderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}
	return buf.Bytes(), nil
}
