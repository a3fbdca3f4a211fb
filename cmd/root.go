package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/degaart/degaart.github.io/internal/config"
	blogerrors "github.com/degaart/degaart.github.io/internal/errors"
	"github.com/degaart/degaart.github.io/internal/scan"
)

// app carries the state shared by all commands for one process run.
type app struct {
	cfgFile  string
	verbose  bool
	fs       afero.Fs
	cfg      config.Config
	patterns *scan.Patterns
	logger   *slog.Logger
	stderr   io.Writer
}

func newApp(fs afero.Fs) *app {
	return &app{
		fs:       fs,
		patterns: scan.NewPatterns(),
		logger:   slog.Default(),
		stderr:   os.Stderr,
	}
}

// cli is built once at process start; subcommands register on rootCmd from
// their own init functions.
var cli = newApp(afero.NewOsFs())

var rootCmd = newRootCmd(cli)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "blog",
		Short: "Builds a static blog from dated markdown posts",
		Long: `blog turns the markdown posts in ./posts (named YYYYMMDD-slug.md) into
an index page and one page per post under ./public, rendered with the
templates in ./template. Other files in ./template are copied alongside.

Running blog without a subcommand performs one full build.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	return root
}

func (a *app) initialize() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	cfg, used, err := config.Load(a.fs, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if used != "" {
		a.logger.Debug("Using config file", "path", used)
	}
	return nil
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		blogerrors.NewCLIErrorAdapter(cli.verbose, cli.logger).HandleError(err)
	}
}
