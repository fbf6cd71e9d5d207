package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/config"
)

func newVerifyCmd(configPath *string) *cobra.Command {
	var timeoutSeconds int
	var correlationID string

	cmd := &cobra.Command{
		Use:   "verify <candidate-file> <test-file>",
		Short: "Run one sandboxed verification locally",
		Long: `Run a single verification without the server: the candidate and test
files are copied into a disposable workspace, the test suite runs under
the configured timeout, and the classified result is printed as JSON.

The exit code is 0 when the tests pass and 1 otherwise, so the command
can gate scripts directly.

Arguments:
  candidate-file    path to the candidate implementation
  test-file         path to its test suite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			candidate, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading candidate: %w", err)
			}
			testCode, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading tests: %w", err)
			}

			logger := newLogger()
			c, err := buildComponents(cfg, logger)
			if err != nil {
				return err
			}
			defer c.cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := c.engine.Verify(ctx, api.VerificationRequest{
				CorrelationID:  correlationID,
				CandidateCode:  string(candidate),
				TestCode:       string(testCode),
				TimeoutSeconds: timeoutSeconds,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}

			if !res.Success {
				return errExitFailure
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "wall-clock timeout in seconds (default: config sandbox.default_timeout)")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation ID for the result (default: generated)")

	return cmd
}
