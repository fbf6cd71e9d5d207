// Package integration exercises the full service stack: a real HTTP
// server assembled from the real workspace manager, sandbox runner,
// engine, and in-memory ledger, with only the child-process command and
// the corrector under test control.
//
// The sandbox runs each attempt through sh instead of pytest so the
// tests stay hermetic: the "candidate" is a shell fragment sourced by
// the "test" script, which exits 0 or 1 like a test framework would.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/engine"
	"github.com/covenantcc/crucible/pkg/ledger"
	"github.com/covenantcc/crucible/pkg/sandbox"
	"github.com/covenantcc/crucible/pkg/transport"
	transporthttp "github.com/covenantcc/crucible/pkg/transport/http"
	"github.com/covenantcc/crucible/pkg/workspace"
)

// shellTest is a test script that sources the candidate and checks the
// answer variable. It fails with a diagnostic on stderr, the way a test
// framework reports an assertion failure.
const shellTest = `. ./main.py
if [ "$answer" != "42" ]; then
	echo "expected answer=42, got answer=$answer" >&2
	exit 1
fi
`

const (
	goodCandidate = "answer=42\n"
	badCandidate  = "answer=7\n"
)

// startStack builds the real component stack and serves it on a local
// port. The corrector may be nil, which disables the corrections
// endpoints. Returns the server's base URL.
func startStack(t *testing.T, corrector engine.Corrector) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	workspaces, err := workspace.NewManager(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("workspace manager: %v", err)
	}

	runner := sandbox.NewExecRunner(workspaces, sandbox.Config{
		Command:        []string{"sh", sandbox.TestFileName},
		DefaultTimeout: 30 * time.Second,
		MaxTimeout:     60 * time.Second,
	}, logger)

	store := ledger.NewMemory(100)

	eng, err := engine.New(runner, corrector, store, engine.Config{MaxAttempts: 3}, logger)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	var loop transport.CorrectionRunner
	if corrector != nil {
		loop = eng
	}
	srv := transporthttp.NewServer(eng, loop, store, transporthttp.WithLogger(logger))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.ServeOn(ln)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return "http://" + ln.Addr().String()
}

// postJSON posts the payload and decodes the response body into out.
// Returns the HTTP status code and the raw body.
func postJSON(t *testing.T, url string, payload, out any) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decoding response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, raw
}

// verify submits one verification and returns the decoded result.
func verify(t *testing.T, base string, req api.VerificationRequest) api.VerificationResult {
	t.Helper()

	var res api.VerificationResult
	status, raw := postJSON(t, base+"/v1/verifications", req, &res)
	if status != http.StatusOK {
		t.Fatalf("verification status = %d, body = %s", status, raw)
	}
	return res
}

// fixOnAttempt returns a corrector that returns the bad candidate until
// call number fixAt, then returns the good one. A fixAt beyond the
// attempt budget never fixes anything.
func fixOnAttempt(fixAt int) engine.Corrector {
	calls := 0
	return engine.CorrectorFunc(func(ctx context.Context, dossier *api.FailureDossier) (string, error) {
		calls++
		if calls >= fixAt {
			return goodCandidate, nil
		}
		return badCandidate, nil
	})
}

// readBody drains and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return string(raw)
}

func containsAll(t *testing.T, s string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in %q", want, s)
		}
	}
}
