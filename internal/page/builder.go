package page

import (
	"github.com/spf13/afero"

	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
	"github.com/degaart/degaart.github.io/internal/model"
)

// Builder renders site pages. Templates are loaded once and reused for every
// render.
type Builder struct {
	fs        afero.Fs
	engine    Engine
	siteTitle string
	index     Template
	article   Template
}

// NewBuilder creates a Builder; call Load before rendering.
func NewBuilder(fs afero.Fs, engine Engine, siteTitle string) *Builder {
	return &Builder{fs: fs, engine: engine, siteTitle: siteTitle}
}

// Load reads and parses the index and article templates.
func (b *Builder) Load(indexPath, articlePath string) error {
	var err error
	if b.index, err = b.load(indexPath); err != nil {
		return err
	}
	b.article, err = b.load(articlePath)
	return err
}

func (b *Builder) load(path string) (Template, error) {
	src, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return nil, blogerrors.FileSystemError(err, "read template", path).Build()
	}
	tpl, err := b.engine.Parse(path, src)
	if err != nil {
		return nil, blogerrors.RenderError(err, "load template").WithContext("path", path).Build()
	}
	return tpl, nil
}

// Index renders the index page for articles, which must already be ordered.
func (b *Builder) Index(articles []*model.Article) ([]byte, error) {
	if b.index == nil {
		return nil, blogerrors.NewError(blogerrors.CategoryInternal, "index template not loaded").Build()
	}
	out, err := b.index.Render(model.NewBuildContext(b.siteTitle, articles))
	if err != nil {
		return nil, blogerrors.RenderError(err, "render index").Build()
	}
	return out, nil
}

// Article renders the page of a single article.
func (b *Builder) Article(a *model.Article) ([]byte, error) {
	if b.article == nil {
		return nil, blogerrors.NewError(blogerrors.CategoryInternal, "article template not loaded").Build()
	}
	out, err := b.article.Render(model.NewArticleData(a))
	if err != nil {
		return nil, blogerrors.RenderError(err, "render article").
			WithContext("article", a.Filename).
			Build()
	}
	return out, nil
}
