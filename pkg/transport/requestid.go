package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/covenantcc/crucible/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// verification. If the incoming request context already carries a
// request ID (set by the HTTP adapter from the X-Request-ID header),
// that value is used. Otherwise, a new unique ID is generated.
//
// The request ID is stored in the context and can be retrieved with
// RequestIDFromContext.
func RequestID() Middleware {
	return func(next Verifier) Verifier {
		return VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, generateRequestID())
			}
			return next.Verify(ctx, req)
		})
	}
}

// LoopRequestID is the loop-handler counterpart of RequestID.
func LoopRequestID() LoopMiddleware {
	return func(next CorrectionRunner) CorrectionRunner {
		return CorrectionRunnerFunc(func(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, generateRequestID())
			}
			return next.RunCorrectionLoop(ctx, req)
		})
	}
}

// generateRequestID creates a new unique request ID as a hex string.
func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
