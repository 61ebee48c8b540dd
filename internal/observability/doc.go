// Package observability builds the zap loggers used by the gateway and
// carries request-scoped fields through a context.
package observability
