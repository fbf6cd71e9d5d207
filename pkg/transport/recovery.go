package transport

import (
	"context"
	"fmt"

	"github.com/covenantcc/crucible/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to server error responses. The server continues to
// accept new requests after a panic is recovered.
func Recovery() Middleware {
	return func(next Verifier) Verifier {
		return VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (res *api.VerificationResult, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					res = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Verify(ctx, req)
		})
	}
}

// LoopRecovery is the loop-handler counterpart of Recovery.
func LoopRecovery() LoopMiddleware {
	return func(next CorrectionRunner) CorrectionRunner {
		return CorrectionRunnerFunc(func(ctx context.Context, req api.CorrectionRequest) (out *api.CorrectionOutcome, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					out = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.RunCorrectionLoop(ctx, req)
		})
	}
}
