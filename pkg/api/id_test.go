package api

import "testing"

func TestNewTaskID_Format(t *testing.T) {
	id := NewTaskID()
	if !IsGeneratedTaskID(id) {
		t.Errorf("generated ID %q does not match the expected format", id)
	}
	if len(id) != len("task_")+24 {
		t.Errorf("unexpected ID length %d for %q", len(id), id)
	}
}

func TestNewTaskID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTaskID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestIsGeneratedTaskID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"task_abcDEF123456789012345678", true},
		{"task_short", false},
		{"resp_abcDEF123456789012345678", false},
		{"task_abcDEF12345678901234567!", false},
		{"", false},
		{"my-session-42", false},
	}

	for _, c := range cases {
		if got := IsGeneratedTaskID(c.id); got != c.want {
			t.Errorf("IsGeneratedTaskID(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}
