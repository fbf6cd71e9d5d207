package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/sandbox"
)

// Ledger is the optional persistence surface for loop state. A nil
// ledger disables persistence; ledger failures never abort a loop.
type Ledger interface {
	// RecordAttempt appends one attempt record for the task.
	RecordAttempt(ctx context.Context, correlationID string, rec api.AttemptRecord) error

	// SetStatus records the task's current loop status.
	SetStatus(ctx context.Context, correlationID string, status api.TaskStatus) error

	// Attempts returns the task's attempt history in order.
	Attempts(ctx context.Context, correlationID string) ([]api.AttemptRecord, error)

	// Status returns the task's recorded status, or empty when unknown.
	Status(ctx context.Context, correlationID string) (api.TaskStatus, error)
}

// Engine drives verification attempts and the bounded correction loop.
// One Engine serves many tasks concurrently; all per-task state lives in
// the loop, never on the Engine.
type Engine struct {
	runner    sandbox.Runner
	corrector Corrector
	ledger    Ledger
	cfg       Config
	logger    *slog.Logger
}

// New creates a new Engine. The runner must not be nil. The corrector
// can be nil for verify-only deployments; RunCorrectionLoop then returns
// an error. The ledger can be nil to disable persistence.
func New(runner sandbox.Runner, corrector Corrector, ledger Ledger, cfg Config, logger *slog.Logger) (*Engine, error) {
	if runner == nil {
		return nil, fmt.Errorf("engine: runner must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		runner:    runner,
		corrector: corrector,
		ledger:    ledger,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Verify executes a single verification attempt outside any correction
// loop. A missing correlation ID is filled in so the result can always
// be attributed.
func (e *Engine) Verify(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
	if req.CorrelationID == "" {
		req.CorrelationID = api.NewTaskID()
	}
	return e.runner.Run(ctx, req)
}
