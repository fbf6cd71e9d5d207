package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/covenantcc/crucible/pkg/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAttempts_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	code := 1
	recs := []api.AttemptRecord{
		{
			AttemptNumber: 1,
			Request:       api.VerificationRequest{CorrelationID: "task_r", CandidateCode: "v1"},
			Result:        api.VerificationResult{Status: api.StatusFailed, ExitCode: &code, Stderr: "boom"},
			Dossier:       &api.FailureDossier{Directive: "d", ErrorText: "boom"},
		},
		{
			AttemptNumber: 2,
			Request:       api.VerificationRequest{CorrelationID: "task_r", CandidateCode: "v2"},
			Result:        api.VerificationResult{Status: api.StatusPassed, Success: true},
		},
	}

	for _, rec := range recs {
		if err := s.RecordAttempt(ctx, "task_r", rec); err != nil {
			t.Fatalf("RecordAttempt(%d): %v", rec.AttemptNumber, err)
		}
	}

	got, err := s.Attempts(ctx, "task_r")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].AttemptNumber != 1 || got[1].AttemptNumber != 2 {
		t.Errorf("records out of order: %d, %d", got[0].AttemptNumber, got[1].AttemptNumber)
	}
	if got[0].Dossier == nil || got[0].Dossier.ErrorText != "boom" {
		t.Errorf("dossier not persisted: %+v", got[0].Dossier)
	}
	if got[0].Result.ExitCode == nil || *got[0].Result.ExitCode != 1 {
		t.Errorf("exit code not persisted: %v", got[0].Result.ExitCode)
	}
	if !got[1].Result.Success {
		t.Error("passing result not persisted")
	}
}

func TestRecordAttempt_DuplicateNumberRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := api.AttemptRecord{AttemptNumber: 1}
	if err := s.RecordAttempt(ctx, "task_dup", rec); err != nil {
		t.Fatalf("first RecordAttempt: %v", err)
	}
	if err := s.RecordAttempt(ctx, "task_dup", rec); err == nil {
		t.Error("expected duplicate attempt number to be rejected")
	}
}

func TestStatus_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	status, err := s.Status(ctx, "task_unknown")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != "" {
		t.Errorf("unknown task should yield empty status, got %q", status)
	}

	for _, st := range []api.TaskStatus{api.TaskStatusVerifying, api.TaskStatusAnalyzing, api.TaskStatusEscalated} {
		if err := s.SetStatus(ctx, "task_s", st); err != nil {
			t.Fatalf("SetStatus(%s): %v", st, err)
		}
		got, err := s.Status(ctx, "task_s")
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if got != st {
			t.Errorf("status = %q, want %q", got, st)
		}
	}
}

func TestAttempts_TasksAreIsolated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordAttempt(ctx, "task_a", api.AttemptRecord{AttemptNumber: 1}); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := s.RecordAttempt(ctx, "task_b", api.AttemptRecord{AttemptNumber: 1}); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	got, err := s.Attempts(ctx, "task_a")
	if err != nil {
		t.Fatalf("Attempts: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record for task_a, got %d", len(got))
	}
}
