package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/capability-resolver/services/routing"
)

// Context key type to avoid collisions
type contextKey string

const (
	// StrategyKey is the context key for a strategy requested through a header
	StrategyKey contextKey = "strategy"
)

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithStrategy adds a requested strategy to the context
func WithStrategy(ctx context.Context, strategy routing.Strategy) context.Context {
	return context.WithValue(ctx, StrategyKey, strategy)
}

// GetStrategyFromContext retrieves the strategy requested through a header.
// The second return value is false when the request did not name one.
func GetStrategyFromContext(ctx context.Context) (routing.Strategy, bool) {
	if val := ctx.Value(StrategyKey); val != nil {
		if strategy, ok := val.(routing.Strategy); ok {
			return strategy, true
		}
	}
	return "", false
}
