package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
	"github.com/covenantcc/crucible/pkg/transport"
)

// Adapter serves the crucible verification API over HTTP.
// It routes requests to the appropriate handler and serializes results.
type Adapter struct {
	verifier transport.Verifier
	loop     transport.CorrectionRunner // nil if no corrector configured
	tasks    transport.TaskReader       // nil if no ledger configured
	inflight *transport.InFlightRegistry
	mux      *http.ServeMux
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		MaxBodySize: 10 << 20, // 10 MB
	}
}

// NewAdapter creates an HTTP adapter with the given handlers. The
// CorrectionRunner is optional; when nil, the corrections endpoints
// return an error indicating the operation is not available. The
// TaskReader is optional; when nil, task status lookups are unavailable.
// Middleware is applied to the Verifier in the given order.
func NewAdapter(verifier transport.Verifier, loop transport.CorrectionRunner, tasks transport.TaskReader, cfg Config, middlewares ...transport.Middleware) *Adapter {
	// Apply middleware chain to the verifier.
	if len(middlewares) > 0 {
		verifier = transport.Chain(middlewares...)(verifier)
	}

	a := &Adapter{
		verifier: verifier,
		loop:     loop,
		tasks:    tasks,
		inflight: transport.NewInFlightRegistry(),
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/verifications", a.handleVerify)
	a.mux.HandleFunc("POST /v1/corrections", a.handleRunCorrection)
	a.mux.HandleFunc("GET /v1/corrections/{id}", a.handleGetTask)
	a.mux.HandleFunc("DELETE /v1/corrections/{id}", a.handleCancelTask)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler includes
// HTTP-level middleware for request ID propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// httpRequestIDMiddleware is HTTP-level middleware that propagates the
// X-Request-ID header. If present in the request, it is forwarded into
// the context; after the handler runs, the effective request ID is added
// to the response headers.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			ctx := transport.ContextWithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
		}
		rw := &requestIDResponseWriter{ResponseWriter: w, r: r}
		next.ServeHTTP(rw, r)
	})
}

// requestIDResponseWriter wraps http.ResponseWriter to inject the
// X-Request-ID header before the first write.
type requestIDResponseWriter struct {
	http.ResponseWriter
	r           *http.Request
	headersSent bool
}

func (w *requestIDResponseWriter) WriteHeader(statusCode int) {
	w.ensureRequestIDHeader()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *requestIDResponseWriter) Write(b []byte) (int, error) {
	w.ensureRequestIDHeader()
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for http.NewResponseController.
func (w *requestIDResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *requestIDResponseWriter) ensureRequestIDHeader() {
	if w.headersSent {
		return
	}
	w.headersSent = true
	if id := transport.RequestIDFromContext(w.r.Context()); id != "" {
		w.ResponseWriter.Header().Set("X-Request-ID", id)
	}
}

// decodeJSON validates the content type, bounds the body size, and
// decodes the request body into dst. It writes the error response itself
// and returns false when the request is unusable.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return false
	}
	return true
}

// handleVerify handles POST /v1/verifications.
//
// Infrastructure faults do not become HTTP errors here: the endpoint
// reports them as a result with status ERROR so the caller sees the same
// result shape for every submission that reached the sandbox layer.
func (a *Adapter) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerificationRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if req.CandidateCode == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("candidate_code", "is required"))
		return
	}
	if req.TestCode == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("test_code", "is required"))
		return
	}

	res, err := a.verifier.Verify(r.Context(), req)
	if err != nil {
		if api.IsInfrastructure(err) {
			res = errorResult(req, err)
		} else {
			transport.WriteAPIError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// errorResult converts an infrastructure fault into a terminal ERROR
// result. The exit code stays null: no process produced one.
func errorResult(req api.VerificationRequest, err error) *api.VerificationResult {
	return &api.VerificationResult{
		CorrelationID: req.CorrelationID,
		Success:       false,
		ExitCode:      nil,
		Stderr:        err.Error(),
		Status:        api.StatusError,
		Timestamp:     time.Now().UTC(),
	}
}

// handleRunCorrection handles POST /v1/corrections. The loop runs to a
// terminal outcome before the response is written; long-running loops
// are bounded by the attempt ceiling and per-attempt timeouts.
func (a *Adapter) handleRunCorrection(w http.ResponseWriter, r *http.Request) {
	if a.loop == nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("", "correction is not available (no corrector configured)"),
			http.StatusNotImplemented,
		)
		return
	}

	var req api.CorrectionRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if req.InitialCandidateCode == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("initial_candidate_code", "is required"))
		return
	}
	if req.InitialTestCode == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("initial_test_code", "is required"))
		return
	}

	// The correlation ID is assigned here so the loop can be registered
	// for cancellation before it starts.
	if req.CorrelationID == "" {
		req.CorrelationID = api.NewTaskID()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if !a.inflight.Register(req.CorrelationID, cancel) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("correlation_id", "task "+req.CorrelationID+" is already running"),
			http.StatusConflict,
		)
		return
	}
	defer a.inflight.Remove(req.CorrelationID)

	outcome, err := a.loop.RunCorrectionLoop(ctx, req)
	if err != nil {
		transport.WriteAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}

// taskView is the JSON shape returned by GET /v1/corrections/{id}.
type taskView struct {
	CorrelationID string              `json:"correlation_id"`
	Status        api.TaskStatus      `json:"status"`
	Attempts      []api.AttemptRecord `json:"attempts"`
}

// handleGetTask handles GET /v1/corrections/{id}.
func (a *Adapter) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if a.tasks == nil {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("", "task lookup is not available (no ledger configured)"),
			http.StatusNotImplemented,
		)
		return
	}

	id := r.PathValue("id")

	status, err := a.tasks.Status(r.Context(), id)
	if err != nil {
		transport.WriteAPIError(w, err)
		return
	}
	if status == "" {
		transport.WriteAPIError(w, api.NewNotFoundError("task "+id+" not found"))
		return
	}

	attempts, err := a.tasks.Attempts(r.Context(), id)
	if err != nil {
		transport.WriteAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(taskView{
		CorrelationID: id,
		Status:        status,
		Attempts:      attempts,
	})
}

// handleCancelTask handles DELETE /v1/corrections/{id}. Only in-flight
// loops can be cancelled; terminal tasks report not found.
func (a *Adapter) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if a.inflight.Cancel(id) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	transport.WriteAPIError(w, api.NewNotFoundError("task "+id+" is not running"))
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
