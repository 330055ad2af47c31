package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger scopes a logger to one resource operation. The request scoped
// logger already carries request_id; when it is absent the fallback is used
// and the request ID from context, if any, is attached instead.
func handlerLogger(ctx context.Context, fallback *slog.Logger, resource, operation string, attrs ...any) *slog.Logger {
	pairs := make([]any, 0, len(attrs)+6)

	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
		if id, ok := RequestIDFromContext(ctx); ok {
			pairs = append(pairs, "request_id", id)
		}
	}

	pairs = append(pairs, "handler", resource)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}
