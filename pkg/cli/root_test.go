package cli

import (
	"bytes"
	"strings"
	"testing"
)

// executeCmd runs the root command with the given args and returns stdout, stderr, and error.
func executeCmd(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Help(t *testing.T) {
	stdout, _, err := executeCmd("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout, "crucible") {
		t.Error("expected 'crucible' in help output")
	}
	if !strings.Contains(stdout, "Available Commands") {
		t.Error("expected 'Available Commands' in help output")
	}
	for _, cmd := range []string{"serve", "verify", "correct", "version"} {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("expected '%s' command in help output", cmd)
		}
	}
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := executeCmd("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "crucible") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, _, err := executeCmd("bogus")
	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestVerify_RequiresTwoArgs(t *testing.T) {
	_, _, err := executeCmd("verify", "only-one.py")
	if err == nil {
		t.Error("expected error for missing test-file argument")
	}
}

func TestCorrect_RequiresTwoArgs(t *testing.T) {
	_, _, err := executeCmd("correct")
	if err == nil {
		t.Error("expected error for missing arguments")
	}
}
