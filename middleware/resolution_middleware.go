package middleware

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/capability-resolver/services/routing"
	"github.com/upb/capability-resolver/utils"
	"go.uber.org/zap"
)

// StrategyHeader lets clients pick a resolution strategy without a request body field
const StrategyHeader = "X-Resolution-Strategy"

// ResolutionMiddleware provides request-scoped middleware for the resolver API
type ResolutionMiddleware struct {
	logger *zap.Logger
}

// NewResolutionMiddleware creates a new ResolutionMiddleware
func NewResolutionMiddleware(logger *zap.Logger) *ResolutionMiddleware {
	return &ResolutionMiddleware{logger: logger}
}

// ExtractStrategy parses the X-Resolution-Strategy header into the request context.
// An unparseable header is rejected with 400 before the handler runs.
func (m *ResolutionMiddleware) ExtractStrategy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(StrategyHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		strategy, err := routing.ParseStrategy(raw)
		if err != nil {
			m.logger.Warn("invalid strategy header",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("strategy", raw))
			_ = utils.WriteBadRequest(w, err.Error(), map[string]interface{}{
				"header":     StrategyHeader,
				"strategies": routing.Strategies(),
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithStrategy(ctx, strategy)))
	})
}

// RequestLogger logs one structured line per request with its status and latency
func (m *ResolutionMiddleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		}

		switch {
		case status >= http.StatusInternalServerError:
			m.logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			m.logger.Warn("request completed", fields...)
		default:
			m.logger.Info("request completed", fields...)
		}
	})
}
