// Package workspace manages the ephemeral filesystem scopes backing
// sandbox executions.
//
// A Manager allocates one unique, empty directory per verification attempt
// under a configured root, writes the candidate and test sources into it,
// and guarantees removal of the entire subtree on every exit path. Each
// workspace is single-use and exclusively owned by the attempt that
// acquired it; directory names embed a random UUID so concurrent tasks can
// never collide on a path.
//
// Removal is guarded: a workspace refuses to delete anything that does not
// resolve to a true subpath of the manager's root, and removal failures are
// logged rather than propagated so they cannot mask a verification result
// already obtained.
package workspace
