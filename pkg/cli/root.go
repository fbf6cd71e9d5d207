// Package cli provides the Cobra-based command tree for crucible.
package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/covenantcc/crucible/pkg/version"
)

// ErrFailed signals that the requested task completed but did not pass.
// main maps it to exit code 1 without printing an error message.
var ErrFailed = errors.New("failed")

// errExitFailure is the internal alias used by subcommands.
var errExitFailure = ErrFailed

// NewRootCmd creates the root cobra command for crucible.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "crucible",
		Short: "Sandboxed code verification with a bounded correction loop",
		Long: `crucible - sandboxed code verification with a bounded correction loop

Crucible executes candidate code against its test suite inside isolated,
disposable workspaces, classifies the outcome, and can drive a bounded
verify-analyze-correct cycle against an external corrector command until
the tests pass or the attempt ceiling is reached.`,
		Version:       version.FullVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: $CRUCIBLE_CONFIG, ./config.yaml, /etc/crucible/config.yaml)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newServeCmd(&configPath),
		newVerifyCmd(&configPath),
		newCorrectCmd(&configPath),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}
