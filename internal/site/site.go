// Package site runs a full build: scan posts, order them, render pages and
// publish the output directory.
package site

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/degaart/degaart.github.io/internal/config"
	"github.com/degaart/degaart.github.io/internal/markdown"
	"github.com/degaart/degaart.github.io/internal/model"
	"github.com/degaart/degaart.github.io/internal/output"
	"github.com/degaart/degaart.github.io/internal/page"
	"github.com/degaart/degaart.github.io/internal/scan"
)

// Report describes a completed build.
type Report struct {
	BuildID       string
	Articles      int
	AssetsCopied  int
	AssetsSkipped int
	OutputDir     string
	Duration      time.Duration
}

// Site wires the pipeline components together.
type Site struct {
	cfg      config.Config
	fs       afero.Fs
	logger   *slog.Logger
	patterns *scan.Patterns
	markdown markdown.Renderer
	engine   page.Engine
}

// Option customises a Site.
type Option func(*Site)

// WithMarkdown replaces the markdown renderer.
func WithMarkdown(r markdown.Renderer) Option {
	return func(s *Site) { s.markdown = r }
}

// WithEngine replaces the template engine.
func WithEngine(e page.Engine) Option {
	return func(s *Site) { s.engine = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) { s.logger = l }
}

// New creates a Site. patterns is shared, read-only state built once by the caller.
func New(cfg config.Config, fs afero.Fs, patterns *scan.Patterns, opts ...Option) *Site {
	s := &Site{
		cfg:      cfg,
		fs:       fs,
		logger:   slog.Default(),
		patterns: patterns,
		markdown: markdown.NewGoldmarkRenderer(),
		engine:   page.NewHTMLEngine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build performs one full build and stops at the first error. Templates and
// pages are rendered before the output directory is touched.
func (s *Site) Build() (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString(), OutputDir: s.cfg.OutputDir}
	logger := s.logger.With("build_id", report.BuildID)

	builder := page.NewBuilder(s.fs, s.engine, s.cfg.SiteTitle)
	if err := builder.Load(s.cfg.IndexTemplate, s.cfg.ArticleTemplate); err != nil {
		return nil, err
	}

	logger.Info("Scanning posts", "dir", s.cfg.PostsDir)
	articles, err := scan.New(s.fs, s.patterns, s.markdown, logger).Scan(s.cfg.PostsDir)
	if err != nil {
		return nil, err
	}
	model.SortArticles(articles)
	report.Articles = len(articles)

	pages := make([]output.Page, 0, len(articles)+1)
	index, err := builder.Index(articles)
	if err != nil {
		return nil, err
	}
	pages = append(pages, output.Page{Name: "index.html", Body: index})
	for _, a := range articles {
		body, err := builder.Article(a)
		if err != nil {
			return nil, err
		}
		pages = append(pages, output.Page{Name: a.Filename, Body: body})
	}

	stats, err := output.NewSynchronizer(s.fs, logger).Sync(s.cfg.OutputDir, s.cfg.TemplateDir, pages)
	if err != nil {
		return nil, err
	}
	report.AssetsCopied = stats.AssetsCopied
	report.AssetsSkipped = stats.AssetsSkipped
	report.Duration = time.Since(start)

	logger.Info("Build complete",
		"articles", report.Articles,
		"assets", report.AssetsCopied,
		"skipped", report.AssetsSkipped,
		"output", report.OutputDir,
		"duration", report.Duration)
	return report, nil
}
