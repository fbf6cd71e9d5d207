package integration

import (
	"net/http"
	"testing"

	"github.com/covenantcc/crucible/pkg/api"
)

func TestHealthz(t *testing.T) {
	base := startStack(t, nil)

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	base := startStack(t, nil)

	// One request so the counters have been observed at least once.
	verify(t, base, api.VerificationRequest{
		CandidateCode: goodCandidate,
		TestCode:      shellTest,
	})

	resp, err := http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	containsAll(t, readBody(t, resp),
		"crucible_requests_total",
		"crucible_verifications_total")
}
