package api

import "fmt"

// TaskStatus represents the state of a correction loop task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusVerifying  TaskStatus = "verifying"
	TaskStatusAnalyzing  TaskStatus = "analyzing"
	TaskStatusCorrecting TaskStatus = "correcting"
	TaskStatusPassed     TaskStatus = "passed"
	TaskStatusEscalated  TaskStatus = "escalated"
)

// ValidateTaskTransition checks whether a task status transition is valid.
// An empty "from" status represents the initial state before any status has
// been set. Terminal states (passed, escalated) do not allow outgoing
// transitions.
func ValidateTaskTransition(from, to TaskStatus) *APIError {
	valid := map[TaskStatus][]TaskStatus{
		"":                   {TaskStatusPending},
		TaskStatusPending:    {TaskStatusVerifying},
		TaskStatusVerifying:  {TaskStatusPassed, TaskStatusAnalyzing},
		TaskStatusAnalyzing:  {TaskStatusCorrecting},
		TaskStatusCorrecting: {TaskStatusVerifying, TaskStatusEscalated},
		TaskStatusPassed:     {}, // terminal
		TaskStatusEscalated:  {}, // terminal
	}

	allowed, exists := valid[from]
	if !exists {
		return NewInvalidRequestError("status",
			fmt.Sprintf("invalid transition from %s to %s", from, to))
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return NewInvalidRequestError("status",
		fmt.Sprintf("invalid transition from %s to %s", from, to))
}

// IsTerminal reports whether the given task status allows no further
// transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusPassed || s == TaskStatusEscalated
}

// Final maps a terminal task status to the FinalStatus surfaced to callers.
// It panics if the status is not terminal, which indicates a controller bug.
func (s TaskStatus) Final() FinalStatus {
	switch s {
	case TaskStatusPassed:
		return FinalPassed
	case TaskStatusEscalated:
		return FinalEscalated
	}
	panic(fmt.Sprintf("api: Final called on non-terminal status %q", s))
}
