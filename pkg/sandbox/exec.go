package sandbox

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	osexec "os/exec"
	"syscall"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/debug"
	"github.com/covenantcc/crucible/pkg/observability"
	"github.com/covenantcc/crucible/pkg/workspace"
)

// ExecRunner runs verification attempts as local child process groups.
// It is safe for concurrent use; each Run call owns its workspace and
// child exclusively.
type ExecRunner struct {
	workspaces *workspace.Manager
	cfg        Config
	logger     *slog.Logger
}

// Ensure ExecRunner implements Runner at compile time.
var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates an ExecRunner backed by the given workspace
// manager. Zero config fields fall back to defaults.
func NewExecRunner(workspaces *workspace.Manager, cfg Config, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{
		workspaces: workspaces,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// Run materializes the request into a fresh workspace, executes the test
// command under the effective timeout, and classifies the outcome. The
// workspace is released before Run returns on every path.
func (r *ExecRunner) Run(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
	timeout := r.cfg.effectiveTimeout(req.TimeoutSeconds)

	ws, err := r.workspaces.Acquire(map[string]string{
		CandidateFileName: req.CandidateCode,
		TestFileName:      req.TestCode,
	})
	if err != nil {
		return nil, err
	}
	defer ws.Release()

	argv := r.cfg.argv()
	debug.Log("sandbox", "starting test process",
		"workspace", ws.ID, "argv", argv, "timeout", timeout)
	start := time.Now()

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	var stdout, stderr bytes.Buffer

	cmd := osexec.Command(argv[0], argv[1:]...)
	cmd.Dir = ws.Dir
	cmd.Env = minimalEnv()
	// Stdin left nil: the child reads from /dev/null.
	// os/exec drains both writers concurrently with execution, so capture
	// cannot deadlock however much the child prints.
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Own process group so the deadline kill reaches every descendant.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, api.NewInfrastructureError(fmt.Sprintf("starting test process %q: %v", argv[0], err))
	}

	pgid := cmd.Process.Pid

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()

	var runErr error
	var timedOut bool

	select {
	case runErr = <-waitDone:
		// Process exited on its own.
	case <-timeoutCtx.Done():
		// Deadline or caller cancellation: kill the whole group, then
		// wait for the output copies to drain.
		killProcessGroup(pgid)
		runErr = <-waitDone
		if ctx.Err() != nil {
			// Abandoning a live child would leak it; the group is
			// already dead, so propagating the cancellation is safe.
			return nil, ctx.Err()
		}
		timedOut = true
	}

	duration := time.Since(start)
	result := &api.VerificationResult{
		CorrelationID: req.CorrelationID,
		Stdout:        stdout.String(),
		Stderr:        stderr.String(),
		DurationMS:    duration.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}

	switch {
	case timedOut:
		result.Status = api.StatusTimedOut
		notice := fmt.Sprintf("Execution timed out after %d seconds", int(timeout.Seconds()))
		if result.Stderr != "" {
			result.Stderr += "\n"
		}
		result.Stderr += notice
	case runErr == nil:
		exitCode := 0
		result.Success = true
		result.ExitCode = &exitCode
		result.Status = api.StatusPassed
	default:
		result.Status = api.StatusFailed
		var exitErr *osexec.ExitError
		if stderrors.As(runErr, &exitErr) {
			if code := exitErr.ExitCode(); code >= 0 {
				result.ExitCode = &code
			}
			// Signal deaths keep a nil exit code; the captured output
			// still carries the diagnostic value.
		} else {
			// Wait itself failed: nothing ran to completion.
			return nil, api.NewInfrastructureError(fmt.Sprintf("waiting for test process: %v", runErr))
		}
	}

	if debug.TraceIsEnabled("sandbox") {
		debug.Raw("sandbox", result.Stdout)
		debug.Raw("sandbox", result.Stderr)
	}

	observability.VerificationsTotal.WithLabelValues(string(result.Status)).Inc()
	observability.VerificationDuration.WithLabelValues(string(result.Status)).Observe(duration.Seconds())

	r.logger.Info("verification executed",
		"correlation_id", req.CorrelationID,
		"workspace_id", ws.ID,
		"status", result.Status,
		"duration_ms", result.DurationMS)

	return result, nil
}

// killProcessGroup forcibly terminates the process group. The negative
// pgid targets the group, reaching any descendants the test spawned.
func killProcessGroup(pgid int) {
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}

// minimalEnv builds the child environment: enough for an interpreter to
// start, nothing that leaks the service's own environment into untrusted
// code.
func minimalEnv() []string {
	env := []string{"PYTHONDONTWRITEBYTECODE=1"}
	for _, key := range []string{"PATH", "HOME", "LANG", "TMPDIR"} {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}
