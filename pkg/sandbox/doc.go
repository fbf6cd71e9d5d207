// Package sandbox executes candidate code against its test inside an
// isolated, disposable workspace.
//
// The ExecRunner spawns one child process group per verification attempt
// with the workspace as its working directory, enforces a hard wall-clock
// deadline, and drains stdout and stderr concurrently with execution so
// capture can never deadlock regardless of output volume. At the deadline
// (or on caller cancellation) the entire process group is forcibly killed;
// output captured up to the kill point is preserved in the result.
//
// A failing test is not an error: exit status maps to first-class result
// data (PASSED, FAILED, TIMED_OUT). Only the inability to execute at all,
// such as a missing interpreter or an unusable workspace, surfaces as an
// infrastructure-class error.
package sandbox
