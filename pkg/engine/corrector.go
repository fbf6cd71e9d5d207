package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	osexec "os/exec"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/debug"
)

// Corrector is the external collaborator that turns a failure dossier
// into a revised candidate. Generation is out of scope for this service;
// the engine only hands over evidence and receives code back.
type Corrector interface {
	// Correct returns a revised candidate implementation for the
	// failure described by the dossier.
	Correct(ctx context.Context, dossier *api.FailureDossier) (string, error)
}

// CorrectorFunc is an adapter that allows using an ordinary function as
// a Corrector.
type CorrectorFunc func(ctx context.Context, dossier *api.FailureDossier) (string, error)

// Correct calls f(ctx, dossier).
func (f CorrectorFunc) Correct(ctx context.Context, dossier *api.FailureDossier) (string, error) {
	return f(ctx, dossier)
}

// CommandCorrector invokes an external command once per dossier: the
// dossier is written to the command's stdin as JSON and the revised
// candidate is read from its stdout. This is how a deployment plugs in
// an LLM-backed corrector without the engine knowing anything about it.
type CommandCorrector struct {
	// Argv is the command and its arguments. Must not be empty.
	Argv []string

	// Timeout bounds one corrector invocation. Zero means 120s.
	Timeout time.Duration
}

// Correct runs the configured command with the dossier on stdin.
func (c *CommandCorrector) Correct(ctx context.Context, dossier *api.FailureDossier) (string, error) {
	if len(c.Argv) == 0 {
		return "", fmt.Errorf("corrector: no command configured")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input, err := json.Marshal(dossier)
	if err != nil {
		return "", fmt.Errorf("corrector: marshal dossier: %w", err)
	}
	debug.Log("corrector", "invoking corrector command",
		"argv", c.Argv, "dossier_bytes", len(input))
	if debug.TraceIsEnabled("corrector") {
		debug.Raw("corrector", string(input))
	}

	var stdout, stderr bytes.Buffer
	cmd := osexec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("corrector: command failed: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.String(), nil
}
