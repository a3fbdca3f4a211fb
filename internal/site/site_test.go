package site

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/degaart/degaart.github.io/internal/config"
	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
	"github.com/degaart/degaart.github.io/internal/model"
	"github.com/degaart/degaart.github.io/internal/page"
	"github.com/degaart/degaart.github.io/internal/scan"
)

const (
	testIndex   = `<h1>{{.Title}}</h1>{{range .Articles}}<a href="{{.Filename}}">{{.Date}} {{.Title}}</a>{{end}}`
	testArticle = `<title>{{.Title}}</title>{{.Contents}}`
)

func testConfig() config.Config {
	return config.Config{
		SiteTitle:       "A tech blog",
		PostsDir:        "posts",
		TemplateDir:     "template",
		IndexTemplate:   "template/index.html",
		ArticleTemplate: "template/article.html",
		OutputDir:       "public",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	base := map[string]string{
		"template/index.html":   testIndex,
		"template/article.html": testArticle,
		"template/css/site.css": "body{}",
		"template/.DS_Store":    "junk",
	}
	for path, content := range base {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

// snapshot maps every file below root to its contents.
func snapshot(t *testing.T, fsys afero.Fs, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func build(t *testing.T, fsys afero.Fs) (*Report, error) {
	t.Helper()
	return New(testConfig(), fsys, scan.NewPatterns(), WithLogger(quietLogger())).Build()
}

func TestBuild_EndToEnd(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"posts/20230102-b.md":      "# Second\n\n~~struck~~\n",
		"posts/20230101-a.md":      "# First\n\nBody *text*.\n",
		"posts/notes.md":           "# Not a post\n",
		"public/stale.txt":         "stale",
		"public/old/20200101.html": "stale",
	})

	report, err := build(t, fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Articles)
	assert.Equal(t, 1, report.AssetsCopied)
	assert.Equal(t, 3, report.AssetsSkipped)
	assert.NotEmpty(t, report.BuildID)

	files := snapshot(t, fsys, "public")
	assert.Equal(t, []string{"20230101-a.html", "20230102-b.html", "css/site.css", "index.html"}, keys(files))

	assert.Equal(t,
		`<h1>A tech blog</h1><a href="20230101-a.html">2023-01-01 First</a><a href="20230102-b.html">2023-01-02 Second</a>`,
		files["index.html"])
	assert.Equal(t, "<title>First</title><h1>First</h1>\n<p>Body <em>text</em>.</p>\n", files["20230101-a.html"])
	assert.Contains(t, files["20230102-b.html"], "<del>struck</del>")
}

func TestBuild_Deterministic(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"posts/20230101-a.md": "# A\n\ntext\n",
		"posts/20230101-b.md": "# B\n\n| x |\n|---|\n| 1 |\n",
		"posts/20221231-z.md": "# Z\n",
	})

	_, err := build(t, fsys)
	require.NoError(t, err)
	first := snapshot(t, fsys, "public")

	_, err = build(t, fsys)
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(t, fsys, "public"))
	assert.Less(t, strings.Index(first["index.html"], "20221231-z.html"), strings.Index(first["index.html"], "20230101-a.html"))
	assert.Less(t, strings.Index(first["index.html"], "20230101-a.html"), strings.Index(first["index.html"], "20230101-b.html"))
}

func TestBuild_MissingTitle(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"posts/20230101-a.md":        "# Fine\n",
		"posts/20230102-untitled.md": "no heading\n",
		"public/index.html":          "previous",
	})

	_, err := build(t, fsys)
	require.Error(t, err)

	missing, ok := blogerrors.AsMissingTitle(err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("posts", "20230102-untitled.md"), missing.Path)
	assert.Equal(t, blogerrors.ExitMissingTitle, blogerrors.NewCLIErrorAdapter(false, quietLogger()).ExitCodeFor(err))

	// Scanning happens before the clean step.
	previous, err := afero.ReadFile(fsys, "public/index.html")
	require.NoError(t, err)
	assert.Equal(t, "previous", string(previous))
}

func TestBuild_TemplateErrorLeavesOutput(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"template/article.html": "{{.Title",
		"posts/20230101-a.md":   "# A\n",
		"public/keep.txt":       "keep",
	})

	_, err := build(t, fsys)
	require.Error(t, err)
	assert.True(t, blogerrors.HasCategory(err, blogerrors.CategoryRender))

	exists, err := afero.Exists(fsys, "public/keep.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBuild_InvalidDate(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"posts/20230231-feb.md": "# Feb\n",
	})

	_, err := build(t, fsys)
	require.Error(t, err)
	assert.True(t, blogerrors.HasCategory(err, blogerrors.CategoryConvention))
	assert.Equal(t, blogerrors.ExitFailure, blogerrors.NewCLIErrorAdapter(false, quietLogger()).ExitCodeFor(err))
}

func TestBuild_EmptyPosts(t *testing.T) {
	fsys := newTestFs(t, nil)
	require.NoError(t, fsys.MkdirAll("posts", 0o755))

	report, err := build(t, fsys)
	require.NoError(t, err)
	assert.Zero(t, report.Articles)

	files := snapshot(t, fsys, "public")
	assert.Equal(t, "<h1>A tech blog</h1>", files["index.html"])
}

func TestBuild_ExampleSite(t *testing.T) {
	fsys := loadExample(t, filepath.Join("..", "..", "example"))

	cfg, used, err := config.Load(fsys, "config.yaml")
	require.NoError(t, err)
	require.Equal(t, "config.yaml", used)

	report, err := New(cfg, fsys, scan.NewPatterns(), WithLogger(quietLogger())).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Articles)

	files := snapshot(t, fsys, "public")
	assert.Equal(t, []string{"20230101-hello.html", "20230315-tables.html", "css/style.css", "index.html"}, keys(files))
	assert.Contains(t, files["index.html"], `<span class="summary">Tables and strikethrough</span>`)
	assert.Contains(t, files["20230315-tables.html"], "<del>old</del>")
	assert.Contains(t, files["20230315-tables.html"], `<p class="note">Raw HTML stays as written.</p>`)
}

type upperMarkdown struct{}

func (upperMarkdown) Render(src []byte) ([]byte, error) {
	return []byte("<pre>" + strings.ToUpper(string(src)) + "</pre>"), nil
}

// listingEngine ignores template sources and renders a plain listing.
type listingEngine struct{ parsed []string }

func (e *listingEngine) Parse(name string, _ []byte) (page.Template, error) {
	e.parsed = append(e.parsed, name)
	return listingTemplate{}, nil
}

type listingTemplate struct{}

func (listingTemplate) Render(data any) ([]byte, error) {
	switch d := data.(type) {
	case model.BuildContext:
		names := make([]string, 0, len(d.Articles))
		for _, a := range d.Articles {
			names = append(names, a.Filename)
		}
		return []byte(d.Title + ": " + strings.Join(names, ",")), nil
	case model.ArticleData:
		return []byte(d.Date + " " + string(d.Contents)), nil
	}
	return nil, fmt.Errorf("unexpected data %T", data)
}

func TestBuild_CustomRenderers(t *testing.T) {
	fsys := newTestFs(t, map[string]string{
		"posts/20230102-b.md": "# B\nbody b",
		"posts/20230101-a.md": "# A\nbody a",
	})
	engine := &listingEngine{}

	_, err := New(testConfig(), fsys, scan.NewPatterns(),
		WithLogger(quietLogger()),
		WithMarkdown(upperMarkdown{}),
		WithEngine(engine),
	).Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"template/index.html", "template/article.html"}, engine.parsed)

	files := snapshot(t, fsys, "public")
	assert.Equal(t, "A tech blog: 20230101-a.html,20230102-b.html", files["index.html"])
	assert.Equal(t, "2023-01-01 <pre># A\nBODY A</pre>", files["20230101-a.html"])
}

// loadExample copies the example site into memory so builds never touch the
// checked-in tree.
func loadExample(t *testing.T, root string) afero.Fs {
	t.Helper()
	osFs := afero.NewOsFs()
	mem := afero.NewMemMapFs()
	err := afero.Walk(osFs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(filepath.ToSlash(rel), "public/") {
			return err
		}
		data, err := afero.ReadFile(osFs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(mem, rel, data, info.Mode().Perm())
	})
	require.NoError(t, err)
	return mem
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
