package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
)

var watchCmd = newWatchCmd(cli)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Builds the site and rebuilds it when sources change",
		Long: `The watch command performs an initial build, then watches the posts and
template directories and runs a full rebuild after each burst of changes.
Failed rebuilds are reported and watching continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "quiet period before a rebuild")
	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func (a *app) watch(ctx context.Context, debounce time.Duration) error {
	if err := a.runBuild(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return blogerrors.WrapError(err, blogerrors.CategoryInternal, "create file watcher").Build()
	}
	defer watcher.Close()

	for _, root := range []string{a.cfg.PostsDir, a.cfg.TemplateDir} {
		if err := a.addDirsRecursive(watcher, root); err != nil {
			return err
		}
	}
	a.logger.Info("Watching for changes", "posts", a.cfg.PostsDir, "templates", a.cfg.TemplateDir)

	accept := func(ev fsnotify.Event) bool { return a.handleEvent(watcher, ev) }
	return a.watchLoop(ctx, watcher.Events, watcher.Errors, debounce, accept, a.runBuild)
}

// watchLoop calls rebuild once accepted events have been quiet for debounce.
// Rebuilds run inline on the calling goroutine, so two never overlap. A failed
// rebuild is reported and the loop keeps going.
func (a *app) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	debounce time.Duration, accept func(fsnotify.Event) bool, rebuild func() error) error {
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if accept(ev) {
				pending = time.After(debounce)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			a.logger.Warn("Watcher error", "error", err)
		case <-pending:
			pending = nil
			a.logger.Info("Rebuilding site")
			a.reportRebuild(rebuild())
		}
	}
}

func (a *app) reportRebuild(err error) {
	if err == nil {
		return
	}
	if missing, ok := blogerrors.AsMissingTitle(err); ok {
		fmt.Fprintln(a.stderr, missing.Error())
		return
	}
	a.logger.Error("Rebuild failed", "error", err)
}

// handleEvent reports whether ev should trigger a rebuild. New directories are
// added to the watch list.
func (a *app) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if ignoredChange(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := a.fs.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := a.addDirsRecursive(watcher, ev.Name); err != nil {
				a.logger.Warn("Watch add failed", "dir", ev.Name, "error", err)
			}
		}
	}
	a.logger.Debug("Change detected", "path", ev.Name, "op", ev.Op.String())
	return true
}

func (a *app) addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return blogerrors.FileSystemError(err, "walk watched directory", path).Build()
		}
		if info.IsDir() {
			if err := w.Add(path); err != nil {
				return blogerrors.FileSystemError(err, "watch directory", path).Build()
			}
		}
		return nil
	})
}

// ignoredChange filters editor swap and backup files.
func ignoredChange(path string) bool {
	base := filepath.Base(path)
	return base == ".DS_Store" ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#")
}
