// Package observability provides structured logging and resolution metrics.
//
// Loggers are zap based; ContextLogger attaches the request id chi stores in
// the request context. Metrics are exported through a Prometheus registry.
package observability
