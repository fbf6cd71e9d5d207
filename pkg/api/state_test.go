package api

import "testing"

func TestValidateTaskTransition_Valid(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
	}{
		{"", TaskStatusPending},
		{TaskStatusPending, TaskStatusVerifying},
		{TaskStatusVerifying, TaskStatusPassed},
		{TaskStatusVerifying, TaskStatusAnalyzing},
		{TaskStatusAnalyzing, TaskStatusCorrecting},
		{TaskStatusCorrecting, TaskStatusVerifying},
		{TaskStatusCorrecting, TaskStatusEscalated},
	}

	for _, c := range cases {
		if err := ValidateTaskTransition(c.from, c.to); err != nil {
			t.Errorf("transition %q -> %q: unexpected error: %v", c.from, c.to, err)
		}
	}
}

func TestValidateTaskTransition_Invalid(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
	}{
		{TaskStatusPassed, TaskStatusVerifying},
		{TaskStatusEscalated, TaskStatusPending},
		{TaskStatusPending, TaskStatusPassed},
		{TaskStatusVerifying, TaskStatusCorrecting},
		{TaskStatusAnalyzing, TaskStatusPassed},
		{"bogus", TaskStatusVerifying},
	}

	for _, c := range cases {
		err := ValidateTaskTransition(c.from, c.to)
		if err == nil {
			t.Errorf("transition %q -> %q: expected error, got nil", c.from, c.to)
			continue
		}
		if err.Type != ErrorTypeInvalidRequest {
			t.Errorf("transition %q -> %q: expected invalid_request, got %s", c.from, c.to, err.Type)
		}
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskStatusPassed, TaskStatusEscalated}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}

	nonTerminal := []TaskStatus{TaskStatusPending, TaskStatusVerifying, TaskStatusAnalyzing, TaskStatusCorrecting}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}

func TestTaskStatus_Final(t *testing.T) {
	if got := TaskStatusPassed.Final(); got != FinalPassed {
		t.Errorf("expected %q, got %q", FinalPassed, got)
	}
	if got := TaskStatusEscalated.Final(); got != FinalEscalated {
		t.Errorf("expected %q, got %q", FinalEscalated, got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Final on non-terminal status should panic")
		}
	}()
	_ = TaskStatusVerifying.Final()
}
