package ctxkeys

import (
	"context"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	OperationKey contextKey = "operation"
)

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// OperationFetch marks requests for signed download URLs, which carry
// credentials in their query string.
const OperationFetch = "files.fetch"

// Operation names the client call a request belongs to ("login", "files.list", ...).
func Operation(ctx context.Context) string {
	op, _ := ctx.Value(OperationKey).(string)
	return op
}

func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey, op)
}
