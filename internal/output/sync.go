// Package output publishes rendered pages and static assets into the output
// directory.
package output

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Page is a rendered file, written directly under the output directory.
type Page struct {
	Name string
	Body []byte
}

// Stats summarises a synchronization.
type Stats struct {
	Pages         int
	AssetsCopied  int
	AssetsSkipped int
}

// Synchronizer rebuilds the output directory from scratch.
type Synchronizer struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewSynchronizer creates a Synchronizer.
func NewSynchronizer(fsys afero.Fs, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{fs: fsys, logger: logger}
}

// Sync clears outDir, writes pages and copies the static tree rooted at
// staticDir. There is no rollback: a failure after the clean leaves outDir
// partially populated.
func (s *Synchronizer) Sync(outDir, staticDir string, pages []Page) (Stats, error) {
	var stats Stats

	s.logger.Info("Cleaning output directory", "dir", outDir)
	if err := s.Clean(outDir); err != nil {
		return stats, err
	}
	if err := s.fs.MkdirAll(outDir, dirPerm); err != nil {
		return stats, blogerrors.FileSystemError(err, "create output directory", outDir).Build()
	}

	for _, p := range pages {
		path := filepath.Join(outDir, p.Name)
		if err := afero.WriteFile(s.fs, path, p.Body, filePerm); err != nil {
			return stats, blogerrors.FileSystemError(err, "write page", path).Build()
		}
		s.logger.Debug("Wrote page", "path", path)
		stats.Pages++
	}

	copied, skipped, err := s.CopyStatic(staticDir, outDir)
	stats.AssetsCopied, stats.AssetsSkipped = copied, skipped
	return stats, err
}

// Clean removes every entry inside dir, leaving dir itself in place. A missing
// dir is not an error.
func (s *Synchronizer) Clean(dir string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return blogerrors.FileSystemError(err, "read output directory", dir).Build()
	}

	type item struct {
		path     string
		isDir    bool
		expanded bool
	}
	stack := make([]item, 0, len(entries))
	for _, e := range entries {
		stack = append(stack, item{path: filepath.Join(dir, e.Name()), isDir: e.IsDir()})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.isDir && !it.expanded {
			children, err := afero.ReadDir(s.fs, it.path)
			if err != nil {
				return blogerrors.FileSystemError(err, "read directory", it.path).Build()
			}
			it.expanded = true
			stack = append(stack, it)
			for _, c := range children {
				stack = append(stack, item{path: filepath.Join(it.path, c.Name()), isDir: c.IsDir()})
			}
			continue
		}

		if err := s.fs.Remove(it.path); err != nil {
			return blogerrors.FileSystemError(err, "remove", it.path).Build()
		}
	}
	return nil
}

// Skipped reports whether a static file is left out of the output: HTML files
// are templates, .DS_Store is Finder metadata.
func Skipped(name string) bool {
	return filepath.Ext(name) == ".html" || name == ".DS_Store"
}

// CopyStatic copies the tree under src into dst, keeping relative paths.
// Directories are always created, even when empty; regular files are copied
// unless Skipped. It returns the number of copied and skipped files.
func (s *Synchronizer) CopyStatic(src, dst string) (copied, skipped int, err error) {
	stack := []string{"."}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dir := filepath.Join(src, rel)
		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			return copied, skipped, blogerrors.FileSystemError(err, "read static directory", dir).Build()
		}

		var subdirs []string
		for _, e := range entries {
			relPath := filepath.Join(rel, e.Name())
			target := filepath.Join(dst, relPath)
			switch {
			case e.IsDir():
				if err := s.fs.MkdirAll(target, dirPerm); err != nil {
					return copied, skipped, blogerrors.FileSystemError(err, "create directory", target).Build()
				}
				subdirs = append(subdirs, relPath)
			case !e.Mode().IsRegular():
				continue
			case Skipped(e.Name()):
				skipped++
			default:
				source := filepath.Join(src, relPath)
				if err := s.copyFile(source, target, e.Mode().Perm()); err != nil {
					return copied, skipped, err
				}
				s.logger.Debug("Copied asset", "src", source, "dst", target)
				copied++
			}
		}

		// Reverse push keeps subdirectories popping in name order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return copied, skipped, nil
}

func (s *Synchronizer) copyFile(src, dst string, perm fs.FileMode) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return blogerrors.FileSystemError(err, "open asset", src).Build()
	}
	defer in.Close()

	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return blogerrors.FileSystemError(err, "create asset", dst).Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return blogerrors.FileSystemError(err, "copy asset", dst).Build()
	}
	if err := out.Close(); err != nil {
		return blogerrors.FileSystemError(err, "close asset", dst).Build()
	}
	// OpenFile only applies perm to new files and is subject to umask.
	if err := s.fs.Chmod(dst, perm); err != nil {
		return blogerrors.FileSystemError(err, "chmod asset", dst).Build()
	}
	return nil
}
