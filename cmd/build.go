package cmd

import (
	"github.com/spf13/cobra"

	"github.com/degaart/degaart.github.io/internal/site"
)

// buildCmd performs one full build, same as running the root command.
var buildCmd = newBuildCmd(cli)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Builds the site once",
		Long: `The build command scans the posts directory, renders the index and
article pages, wipes the output directory and writes the pages and static
assets into it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild()
		},
	}
}

func (a *app) runBuild() error {
	_, err := site.New(a.cfg, a.fs, a.patterns, site.WithLogger(a.logger)).Build()
	return err
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
