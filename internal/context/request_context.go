package context

import (
	"context"
)

type contextKey string

var (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal"
)

// Principal identifies who authenticated a request and how.
type Principal struct {
	Subject string
	Method  string // "api_key" or "bearer"
	Admin   bool
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func SetPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
