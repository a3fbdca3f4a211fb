// Package scan discovers posts and turns them into articles.
package scan

import (
	"bytes"
	"html/template"
	"log/slog"
	"path/filepath"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
	"github.com/degaart/degaart.github.io/internal/markdown"
	"github.com/degaart/degaart.github.io/internal/model"
)

var yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Scanner reads a posts directory.
type Scanner struct {
	fs       afero.Fs
	patterns *Patterns
	md       markdown.Renderer
	logger   *slog.Logger
}

// New creates a Scanner.
func New(fs afero.Fs, patterns *Patterns, md markdown.Renderer, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{fs: fs, patterns: patterns, md: md, logger: logger}
}

// Scan returns one article per regular file in dir whose name follows the
// post convention, in directory listing order. Other entries are ignored.
func (s *Scanner) Scan(dir string) ([]*model.Article, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, blogerrors.FileSystemError(err, "read posts directory", dir).Build()
	}

	var articles []*model.Article
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		base, date, ok := s.patterns.MatchPost(entry.Name())
		if !ok {
			s.logger.Debug("Skipping non-post file", "name", entry.Name())
			continue
		}

		path := filepath.Join(dir, entry.Name())
		article, err := s.load(path, base, date)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("Loaded post", "path", path, "title", article.Title)
		articles = append(articles, article)
	}
	return articles, nil
}

func (s *Scanner) load(path, base, date string) (*model.Article, error) {
	published, err := ParseDate(date)
	if err != nil {
		return nil, blogerrors.WrapError(err, blogerrors.CategoryConvention, "invalid post date").
			WithContext("path", path).
			WithContext("date", date).
			Build()
	}

	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, blogerrors.FileSystemError(err, "read post", path).Build()
	}

	meta, body := s.splitFrontMatter(path, raw)

	title, ok := s.patterns.Title(body)
	if !ok {
		return nil, &blogerrors.MissingTitleError{Path: path}
	}

	contents, err := s.md.Render(body)
	if err != nil {
		return nil, blogerrors.RenderError(err, "render markdown").WithContext("path", path).Build()
	}

	summary, _ := meta["summary"].(string)
	return &model.Article{
		Title:    title,
		Date:     published,
		Contents: template.HTML(contents),
		Filename: base + ".html",
		Source:   path,
		Summary:  summary,
		Params:   meta,
	}, nil
}

// splitFrontMatter strips a leading YAML block. A post that opens with a "---"
// thematic break is not front matter: when the block fails to parse or holds
// no keys, the full text is returned unchanged.
func (s *Scanner) splitFrontMatter(path string, raw []byte) (map[string]any, []byte) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(raw), &meta, yamlFrontMatter)
	if err != nil {
		s.logger.Debug("No front matter, treating as pure markdown", "path", path, "error", err)
		return nil, raw
	}
	if len(meta) == 0 {
		return nil, raw
	}
	return meta, body
}
