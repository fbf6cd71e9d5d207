package sandbox

import (
	"context"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
)

// Runner executes one verification attempt and classifies its outcome.
// Implementations must guarantee that any workspace created for the
// attempt is gone by the time Run returns, on every exit path.
type Runner interface {
	// Run executes the request's test against its candidate code.
	// It returns a result for PASSED, FAILED, and TIMED_OUT outcomes.
	// An error return means the attempt could not be evaluated at all
	// (infrastructure fault) or the context was cancelled; no result
	// exists in that case.
	Run(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error)
}

// Default file names materialized into each workspace. The test file
// imports the candidate as a module ("from main import ..."), matching
// the contract the external generator is prompted with.
const (
	CandidateFileName = "main.py"
	TestFileName      = "test_main.py"
)

// Config holds sandbox execution settings.
type Config struct {
	// PythonBin is the interpreter used to run the test framework.
	// Default "python3".
	PythonBin string

	// DefaultTimeout applies when a request carries no override.
	// Default 30s.
	DefaultTimeout time.Duration

	// MaxTimeout caps per-request timeout overrides. Default 300s.
	MaxTimeout time.Duration

	// Command overrides the full argv executed in the workspace. When
	// empty, the runner executes
	//
	//	<PythonBin> -m pytest <TestFileName> -v
	//
	// The override exists for alternate test runtimes and for hermetic
	// tests of the runner itself.
	Command []string
}

// withDefaults returns the config with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.PythonBin == "" {
		c.PythonBin = "python3"
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 30 * time.Second
	}
	if c.MaxTimeout <= 0 {
		c.MaxTimeout = 300 * time.Second
	}
	return c
}

// argv returns the command executed inside the workspace.
func (c Config) argv() []string {
	if len(c.Command) > 0 {
		return c.Command
	}
	return []string{c.PythonBin, "-m", "pytest", TestFileName, "-v"}
}

// effectiveTimeout resolves a per-request override in seconds against the
// configured default and maximum. Overrides are clamped to [1s, MaxTimeout].
func (c Config) effectiveTimeout(overrideSeconds int) time.Duration {
	if overrideSeconds <= 0 {
		return c.DefaultTimeout
	}
	d := time.Duration(overrideSeconds) * time.Second
	if d > c.MaxTimeout {
		return c.MaxTimeout
	}
	return d
}
