package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/covenantcc/crucible/pkg/api"
)

// Logging returns middleware that emits structured log entries for each
// verification. The log entry includes the correlation ID, request ID
// (from context), duration, and the result status or error.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Verifier) Verifier {
		return VerifierFunc(func(ctx context.Context, req api.VerificationRequest) (*api.VerificationResult, error) {
			start := time.Now()

			res, err := next.Verify(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", req.CorrelationID),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "verification failed", attrs...)
			} else {
				attrs = append(attrs, slog.String("status", string(res.Status)))
				logger.LogAttrs(ctx, slog.LevelInfo, "verification completed", attrs...)
			}

			return res, err
		})
	}
}

// LoopLogging is the loop-handler counterpart of Logging. It logs one
// entry per completed loop with the final status and attempt count.
func LoopLogging(logger *slog.Logger) LoopMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next CorrectionRunner) CorrectionRunner {
		return CorrectionRunnerFunc(func(ctx context.Context, req api.CorrectionRequest) (*api.CorrectionOutcome, error) {
			start := time.Now()

			out, err := next.RunCorrectionLoop(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("correlation_id", req.CorrelationID),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "correction loop failed", attrs...)
			} else {
				attrs = append(attrs,
					slog.String("final_status", string(out.FinalStatus)),
					slog.Int("attempts", len(out.Attempts)))
				logger.LogAttrs(ctx, slog.LevelInfo, "correction loop completed", attrs...)
			}

			return out, err
		})
	}
}
