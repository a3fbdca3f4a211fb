package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by the CLI.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitMissingTitle = 2
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if _, ok := AsMissingTitle(err); ok {
		return ExitMissingTitle
	}
	return ExitFailure
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if missing, ok := AsMissingTitle(err); ok {
		return missing.Error()
	}
	if classified, ok := AsClassified(err); ok && !a.verbose {
		if path, ok := classified.Context().GetString("path"); ok {
			return fmt.Sprintf("Error: %s (%s)", classified.Message(), path)
		}
		return "Error: " + classified.Message()
	}
	return fmt.Sprintf("Error: %v", err)
}

// HandleError reports err and exits the process with the matching code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	code := a.ExitCodeFor(err)
	if classified, ok := AsClassified(err); ok {
		a.logger.Error("Build failed", append(classified.LogAttrs(), "error", err)...)
	} else if a.verbose {
		a.logger.Error("Build failed", "error", err)
	}

	fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(code)
}
