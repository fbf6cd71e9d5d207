package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/covenantcc/crucible/pkg/api"
)

func passingVerifier(order *[]string) Verifier {
	return VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
		if order != nil {
			*order = append(*order, "handler")
		}
		code := 0
		return &api.VerificationResult{
			CorrelationID: req.CorrelationID,
			Success:       true,
			ExitCode:      &code,
			Status:        api.StatusPassed,
		}, nil
	})
}

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Verifier) Verifier {
			return VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
				order = append(order, name+":before")
				res, err := next.Verify(ctx, req)
				order = append(order, name+":after")
				return res, err
			})
		}
	}

	chain := Chain(mw("first"), mw("second"), mw("third"))
	wrapped := chain(passingVerifier(&order))

	wrapped.Verify(context.Background(), api.VerificationRequest{})

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
		panic("test panic")
	})

	wrapped := Recovery()(handler)

	res, err := wrapped.Verify(context.Background(), api.VerificationRequest{})
	if res != nil {
		t.Error("expected nil result after recovered panic")
	}
	if err == nil {
		t.Fatal("expected error after recovered panic")
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != api.ErrorTypeServerError {
		t.Errorf("expected server_error, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "test panic") {
		t.Errorf("error message should carry the panic value: %q", apiErr.Message)
	}
}

func TestLoopRecoveryCatchesPanic(t *testing.T) {
	handler := CorrectionRunnerFunc(func(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
		panic("loop panic")
	})

	out, err := LoopRecovery()(handler).RunCorrectionLoop(context.Background(), api.CorrectionRequest{})
	if out != nil || err == nil {
		t.Fatalf("expected nil outcome and error, got %v, %v", out, err)
	}
}

func TestRequestIDAssignsID(t *testing.T) {
	var seen string
	handler := VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
		seen = RequestIDFromContext(ctx)
		return &api.VerificationResult{}, nil
	})

	RequestID()(handler).Verify(context.Background(), api.VerificationRequest{})

	if seen == "" {
		t.Error("request ID should be assigned when missing")
	}
}

func TestRequestIDPreservesExistingID(t *testing.T) {
	var seen string
	handler := VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
		seen = RequestIDFromContext(ctx)
		return &api.VerificationResult{}, nil
	})

	ctx := ContextWithRequestID(context.Background(), "req-fixed")
	RequestID()(handler).Verify(ctx, api.VerificationRequest{})

	if seen != "req-fixed" {
		t.Errorf("request ID = %q, want \"req-fixed\"", seen)
	}
}

func TestLoggingEmitsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := Logging(logger)(passingVerifier(nil))
	wrapped.Verify(context.Background(), api.VerificationRequest{CorrelationID: "task_log"})

	out := buf.String()
	if !strings.Contains(out, "verification completed") {
		t.Errorf("missing completion log entry: %s", out)
	}
	if !strings.Contains(out, "task_log") {
		t.Errorf("log entry should carry the correlation ID: %s", out)
	}
	if !strings.Contains(out, "PASSED") {
		t.Errorf("log entry should carry the status: %s", out)
	}
}

func TestLoopLoggingEmitsFinalStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := CorrectionRunnerFunc(func(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
		return &api.CorrectionOutcome{
			CorrelationID: req.CorrelationID,
			FinalStatus:   api.FinalEscalated,
			Attempts:      make([]api.AttemptRecord, 3),
		}, nil
	})

	LoopLogging(logger)(handler).RunCorrectionLoop(context.Background(), api.CorrectionRequest{CorrelationID: "task_esc"})

	out := buf.String()
	if !strings.Contains(out, "ESCALATED") || !strings.Contains(out, "attempts=3") {
		t.Errorf("loop log entry incomplete: %s", out)
	}
}
