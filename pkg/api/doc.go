// Package api defines the core types for the Crucible verification service.
//
// This package provides all data types exchanged between the transport
// layer, the verification engine, and external callers: verification
// requests and results, failure dossiers, attempt records, the task
// state machine, error types, and ID generation.
//
// The package has zero external dependencies (Go standard library only) and
// performs no I/O. All types serialize to the JSON wire format of the
// verification and correction endpoints.
//
// Core types:
//   - [VerificationRequest]: one candidate+test pair submitted for execution
//   - [VerificationResult]: the outcome of one sandbox execution
//   - [FailureDossier]: structured evidence for a failed attempt
//   - [AttemptRecord]: one entry in a task's correction ledger
//   - [APIError]: structured error with type, param, and message
package api
