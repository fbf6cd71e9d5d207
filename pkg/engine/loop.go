package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/covenantcc/crucible/pkg/analyzer"
	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/observability"
)

// loopState is the per-task control state of one correction loop. It is
// owned exclusively by the RunCorrectionLoop call that created it; tasks
// never share loop state.
type loopState struct {
	correlationID string
	status        api.TaskStatus
	attempts      []api.AttemptRecord
	maxAttempts   int
}

// transition moves the loop to the next status, enforcing the state
// machine. An invalid transition is a controller bug and surfaces as a
// server error rather than being silently absorbed.
func (s *loopState) transition(to api.TaskStatus) error {
	if err := api.ValidateTaskTransition(s.status, to); err != nil {
		return api.NewServerError(fmt.Sprintf("correction loop bug: %v", err))
	}
	s.status = to
	return nil
}

// RunCorrectionLoop drives one task through the full
// verify → analyze → correct cycle until it passes or the attempt ceiling
// is reached. Attempts are strictly sequential: each attempt's input
// depends causally on the previous attempt's dossier.
//
// Only infrastructure-class failures (workspace, launch) and corrector
// failures abort the loop early; test failures and timeouts are absorbed
// as attempts. The returned outcome always carries the complete attempt
// ledger.
func (e *Engine) RunCorrectionLoop(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
	if e.corrector == nil {
		return nil, api.NewServerError("engine: no corrector configured")
	}

	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = api.NewTaskID()
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = e.cfg.maxAttempts()
	}

	st := &loopState{correlationID: correlationID, maxAttempts: maxAttempts}
	if err := st.transition(api.TaskStatusPending); err != nil {
		return nil, err
	}

	candidate := req.InitialCandidateCode

	// Resume from the ledger when this task has run before. A task
	// already terminal just reports its stored outcome; a task
	// interrupted mid-loop continues from its last dossier.
	if resumed, outcome, err := e.resume(ctx, st, &candidate); err != nil {
		return nil, err
	} else if resumed && outcome != nil {
		return outcome, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := st.transition(api.TaskStatusVerifying); err != nil {
			return nil, err
		}
		e.setStatus(ctx, st)

		vreq := api.VerificationRequest{
			CorrelationID:  correlationID,
			CandidateCode:  candidate,
			TestCode:       req.InitialTestCode,
			TimeoutSeconds: req.TimeoutSeconds,
		}

		res, err := e.runner.Run(ctx, vreq)
		if err != nil {
			// Infrastructure fault or cancellation: no meaningful
			// dossier can be produced, so no retry is consumed.
			return nil, err
		}

		rec := api.AttemptRecord{
			AttemptNumber: len(st.attempts) + 1,
			Request:       vreq,
			Result:        *res,
		}

		if res.Success {
			st.attempts = append(st.attempts, rec)
			e.recordAttempt(ctx, st, rec)
			if err := st.transition(api.TaskStatusPassed); err != nil {
				return nil, err
			}
			e.setStatus(ctx, st)
			return e.finish(st), nil
		}

		if err := st.transition(api.TaskStatusAnalyzing); err != nil {
			return nil, err
		}
		e.setStatus(ctx, st)

		// The dossier carries the history of the attempts before this
		// one; the slice is cloned so later appends cannot mutate it.
		rec.Dossier = analyzer.Analyze(req.Directive, vreq, res, slices.Clone(st.attempts))
		st.attempts = append(st.attempts, rec)
		e.recordAttempt(ctx, st, rec)

		if err := st.transition(api.TaskStatusCorrecting); err != nil {
			return nil, err
		}
		e.setStatus(ctx, st)

		if len(st.attempts) >= st.maxAttempts {
			if err := st.transition(api.TaskStatusEscalated); err != nil {
				return nil, err
			}
			e.setStatus(ctx, st)
			return e.finish(st), nil
		}

		corrected, err := e.corrector.Correct(ctx, rec.Dossier)
		if err != nil {
			return nil, api.NewServerError(fmt.Sprintf("corrector failed on attempt %d: %v", rec.AttemptNumber, err))
		}
		candidate = corrected
	}
}

// resume reloads a task's history from the ledger. When the task is
// already terminal it returns the stored outcome directly. When the task
// was interrupted after a failed attempt, the loop state is rebuilt from
// the persisted attempts and the next candidate is regenerated from the
// last dossier.
func (e *Engine) resume(ctx context.Context, st *loopState, candidate *string) (bool, *api.CorrectionOutcome, error) {
	if e.ledger == nil {
		return false, nil, nil
	}

	attempts, err := e.ledger.Attempts(ctx, st.correlationID)
	if err != nil {
		e.logger.Warn("ledger read failed, starting fresh",
			"correlation_id", st.correlationID, "error", err)
		return false, nil, nil
	}
	if len(attempts) == 0 {
		return false, nil, nil
	}

	status, err := e.ledger.Status(ctx, st.correlationID)
	if err != nil {
		e.logger.Warn("ledger status read failed, starting fresh",
			"correlation_id", st.correlationID, "error", err)
		return false, nil, nil
	}

	st.attempts = attempts

	if status.IsTerminal() {
		st.status = status
		e.logger.Info("task already terminal, returning stored outcome",
			"correlation_id", st.correlationID, "status", status)
		return true, &api.CorrectionOutcome{
			CorrelationID: st.correlationID,
			FinalStatus:   status.Final(),
			Attempts:      st.attempts,
		}, nil
	}

	last := attempts[len(attempts)-1]
	if last.Dossier == nil {
		// A non-terminal task whose last attempt has no dossier should
		// not exist; treat the history as authoritative and re-verify
		// the last candidate.
		st.status = api.TaskStatusPending
		*candidate = last.Request.CandidateCode
		return true, nil, nil
	}

	if len(st.attempts) >= st.maxAttempts {
		st.status = api.TaskStatusCorrecting
		if err := st.transition(api.TaskStatusEscalated); err != nil {
			return false, nil, err
		}
		e.setStatus(ctx, st)
		return true, e.finish(st), nil
	}

	corrected, err := e.corrector.Correct(ctx, last.Dossier)
	if err != nil {
		return false, nil, api.NewServerError(fmt.Sprintf("corrector failed on resume: %v", err))
	}
	*candidate = corrected
	st.status = api.TaskStatusCorrecting

	e.logger.Info("resumed task from ledger",
		"correlation_id", st.correlationID, "attempts", len(st.attempts))
	return true, nil, nil
}

// finish builds the terminal outcome and records loop metrics.
func (e *Engine) finish(st *loopState) *api.CorrectionOutcome {
	final := st.status.Final()
	observability.CorrectionsTotal.WithLabelValues(string(final)).Inc()
	observability.CorrectionAttempts.Observe(float64(len(st.attempts)))

	e.logger.Info("correction loop finished",
		"correlation_id", st.correlationID,
		"final_status", final,
		"attempts", len(st.attempts))

	return &api.CorrectionOutcome{
		CorrelationID: st.correlationID,
		FinalStatus:   final,
		Attempts:      st.attempts,
	}
}

// recordAttempt persists one attempt record, best effort.
func (e *Engine) recordAttempt(ctx context.Context, st *loopState, rec api.AttemptRecord) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.RecordAttempt(ctx, st.correlationID, rec); err != nil {
		e.logger.Warn("ledger attempt write failed",
			"correlation_id", st.correlationID,
			"attempt", rec.AttemptNumber,
			"error", err)
	}
}

// setStatus persists the current loop status, best effort.
func (e *Engine) setStatus(ctx context.Context, st *loopState) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.SetStatus(ctx, st.correlationID, st.status); err != nil {
		e.logger.Warn("ledger status write failed",
			"correlation_id", st.correlationID,
			"status", st.status,
			"error", err)
	}
}
