// Package ledger persists correction-loop state.
//
// Two backends implement the same surface: Store keeps attempt records in
// SQLite, Memory keeps a bounded LRU of recent tasks in process memory.
// The engine treats persistence as optional supporting infrastructure: a
// nil ledger disables it, and ledger write failures are logged rather than
// propagated so they can never mask a verification outcome. What a ledger
// buys is resumability (a correction loop restarted with the same
// correlation ID reconstructs its attempt history and terminal status
// instead of starting over) and a record for manual inspection after an
// escalation.
package ledger
