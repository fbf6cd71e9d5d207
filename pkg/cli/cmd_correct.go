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

func newCorrectCmd(configPath *string) *cobra.Command {
	var timeoutSeconds int
	var maxAttempts int
	var correlationID string
	var directive string

	cmd := &cobra.Command{
		Use:   "correct <candidate-file> <test-file>",
		Short: "Run a full correction loop locally",
		Long: `Drive a bounded verify-analyze-correct cycle without the server.

Each failed attempt produces a dossier that is piped to the configured
corrector command (corrector.command in the config, or the
CRUCIBLE_CORRECTOR_CMD env var) as JSON on stdin; the corrector's stdout
becomes the next candidate. The loop stops at the first pass or at the
attempt ceiling, and the full outcome is printed as JSON.

The exit code is 0 when the loop ends PASSED and 1 when it escalates.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if len(cfg.Corrector.Command) == 0 {
				return fmt.Errorf("no corrector configured (set corrector.command or CRUCIBLE_CORRECTOR_CMD)")
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

			outcome, err := c.engine.RunCorrectionLoop(ctx, api.CorrectionRequest{
				CorrelationID:        correlationID,
				Directive:            directive,
				InitialCandidateCode: string(candidate),
				InitialTestCode:      string(testCode),
				MaxAttempts:          maxAttempts,
				TimeoutSeconds:       timeoutSeconds,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(outcome); err != nil {
				return err
			}

			if outcome.FinalStatus != api.FinalPassed {
				return errExitFailure
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "per-attempt wall-clock timeout in seconds (default: config sandbox.default_timeout)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "attempt ceiling (default: config loop.max_attempts)")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "correlation ID for the task (default: generated; reuses persisted state when a ledger is configured)")
	cmd.Flags().StringVar(&directive, "directive", "", "original task directive carried into failure dossiers")

	return cmd
}
