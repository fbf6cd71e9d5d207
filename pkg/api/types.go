package api

import "time"

// Status classifies the outcome of a single sandbox execution.
type Status string

const (
	// StatusPassed means the test process exited 0.
	StatusPassed Status = "PASSED"
	// StatusFailed means the test process ran to completion with a
	// non-zero exit code.
	StatusFailed Status = "FAILED"
	// StatusTimedOut means the process group was killed at the deadline.
	// Partial output captured up to the kill point is preserved.
	StatusTimedOut Status = "TIMED_OUT"
	// StatusError means the test could not be executed at all
	// (infrastructure fault). No retry is consumed for this outcome.
	StatusError Status = "ERROR"
)

// FinalStatus is the terminal outcome of a correction loop.
type FinalStatus string

const (
	// FinalPassed means a verification attempt succeeded within budget.
	FinalPassed FinalStatus = "PASSED"
	// FinalEscalated means the attempt ceiling was reached without a
	// passing result and human or upstream intervention is required.
	FinalEscalated FinalStatus = "ESCALATED"
)

// VerificationRequest holds the inputs to a single verification attempt.
// A request is immutable once submitted.
type VerificationRequest struct {
	// CorrelationID is an opaque identifier supplied by the caller
	// (session or task ID). Generated when empty.
	CorrelationID string `json:"correlation_id"`

	// CandidateCode is the candidate implementation source text.
	CandidateCode string `json:"candidate_code"`

	// TestCode is the test source text executed against the candidate.
	TestCode string `json:"test_code"`

	// TimeoutSeconds overrides the configured per-attempt timeout.
	// Zero means use the default. Values are clamped to the configured
	// maximum.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// VerificationResult is the outcome of exactly one sandbox execution.
// ExitCode is nil for TIMED_OUT and ERROR outcomes, where the process
// did not exit on its own.
type VerificationResult struct {
	CorrelationID string    `json:"correlation_id"`
	Success       bool      `json:"success"`
	ExitCode      *int      `json:"exit_code"`
	Stdout        string    `json:"stdout"`
	Stderr        string    `json:"stderr"`
	Status        Status    `json:"status"`
	DurationMS    int64     `json:"duration_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// ErrorText returns the diagnostic text of a non-passing result: the
// captured stderr, falling back to stdout when stderr is empty.
func (r *VerificationResult) ErrorText() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// FailureDossier packages the evidence for one failed attempt. It is
// assembled only when Success is false and is never mutated afterwards;
// its only consumer is the external corrector.
type FailureDossier struct {
	// Directive is the original natural-language instruction the
	// candidate code was generated from. Opaque to this service.
	Directive string `json:"directive"`

	// CandidateCode is the exact code that was tested.
	CandidateCode string `json:"candidate_code"`

	// TestCode is the exact test that was run.
	TestCode string `json:"test_code"`

	// ErrorText is the captured diagnostic output of the failing run.
	ErrorText string `json:"error_text"`

	// History holds the prior attempt records for the same task, oldest
	// first. Attempt N's dossier carries records 1..N-1 unchanged.
	History []AttemptRecord `json:"history,omitempty"`
}

// AttemptRecord is one entry in the correction loop's ledger. The ordered
// sequence of records for a task is the causal history consumed by the
// failure analyzer.
type AttemptRecord struct {
	// AttemptNumber is 1-based and strictly increasing per task.
	AttemptNumber int `json:"attempt_number"`

	Request VerificationRequest `json:"request"`
	Result  VerificationResult  `json:"result"`

	// Dossier is set only when the attempt did not pass.
	Dossier *FailureDossier `json:"dossier,omitempty"`
}

// CorrectionRequest holds the inputs to a full correction loop run.
type CorrectionRequest struct {
	CorrelationID string `json:"correlation_id"`

	// Directive is forwarded verbatim into every dossier.
	Directive string `json:"directive"`

	InitialCandidateCode string `json:"initial_candidate_code"`
	InitialTestCode      string `json:"initial_test_code"`

	// MaxAttempts bounds the loop. Zero means use the configured
	// default of 3.
	MaxAttempts int `json:"max_attempts,omitempty"`

	// TimeoutSeconds is the per-attempt timeout override applied to
	// every attempt of this task.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// CorrectionOutcome is the terminal report of one correction loop run.
// Attempts always holds the complete ledger, including the passing
// attempt when FinalStatus is PASSED.
type CorrectionOutcome struct {
	CorrelationID string          `json:"correlation_id"`
	FinalStatus   FinalStatus     `json:"final_status"`
	Attempts      []AttemptRecord `json:"attempts"`
}
