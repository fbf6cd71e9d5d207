// Package transport defines the handler interfaces and middleware chain for
// the crucible HTTP transport layer.
//
// The transport layer bridges external clients and the verification engine.
// It deserializes incoming requests into the core types defined in pkg/api,
// dispatches them for processing, and serializes results back as JSON.
//
// # Handler Interfaces
//
// Two handler interfaces define the contract between the transport layer and
// the engine:
//
//   - Verifier handles single verification attempts, available in every
//     deployment.
//   - CorrectionRunner drives full correction loops, available only when a
//     corrector is configured.
//
// # Middleware
//
// The middleware chain wraps Verifier with cross-cutting concerns. Built-in
// middleware provides panic recovery, request ID assignment (X-Request-ID),
// and structured logging via log/slog. Custom middleware can be added for
// application-specific concerns.
package transport
