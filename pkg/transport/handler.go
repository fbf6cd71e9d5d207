package transport

import (
	"context"

	"github.com/covenantcc/crucible/pkg/api"
)

// Verifier handles a single verification attempt. It is the primary
// handler contract, available in every deployment. The implementation
// receives a request, executes it in an isolated sandbox, and returns
// the classified result.
type Verifier interface {
	Verify(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error)
}

// VerifierFunc is an adapter that allows using an ordinary function
// as a Verifier.
type VerifierFunc func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error)

// Verify calls f(ctx, req).
func (f VerifierFunc) Verify(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
	return f(ctx, req)
}

// CorrectionRunner drives a full verify-analyze-correct loop to a
// terminal outcome. It is only available in deployments with a corrector
// configured.
type CorrectionRunner interface {
	RunCorrectionLoop(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error)
}

// CorrectionRunnerFunc is an adapter that allows using an ordinary
// function as a CorrectionRunner.
type CorrectionRunnerFunc func(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error)

// RunCorrectionLoop calls f(ctx, req).
func (f CorrectionRunnerFunc) RunCorrectionLoop(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
	return f(ctx, req)
}

// TaskReader exposes stored task state for status lookups. Only
// available when a ledger is configured.
type TaskReader interface {
	// Status returns the task's recorded status, or empty when unknown.
	Status(ctx context.Context, correlationID string) (api.TaskStatus, error)

	// Attempts returns the task's attempt history in order.
	Attempts(ctx context.Context, correlationID string) ([]api.AttemptRecord, error)
}
