package ctxutil

import (
	"context"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
)

// Re-export ContextKey type
type ContextKey = constants.ContextKey

// Re-export context keys
const (
	RequestIDKey = constants.CtxKeyRequestID
	UserIDKey    = constants.CtxKeyUserID
	UserRoleKey  = constants.CtxKeyUserRole
	ClientIPKey  = constants.CtxKeyClientIP
	UserAgentKey = constants.CtxKeyUserAgent
	StartTimeKey = constants.CtxKeyStartTime
	ModuleKey    = constants.CtxKeyModule
	FunctionKey  = constants.CtxKeyFunction
)

// RequestInfo is what the request middleware knows about the caller.
type RequestInfo struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

// WithRequestInfo stores request tracking values and the start time.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, info.RequestID)
	ctx = context.WithValue(ctx, ClientIPKey, info.ClientIP)
	ctx = context.WithValue(ctx, UserAgentKey, info.UserAgent)
	if GetStartTime(ctx).IsZero() {
		ctx = context.WithValue(ctx, StartTimeKey, time.Now())
	}
	return ctx
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, UserRoleKey, role)
}

// WithFunction tags ctx with the layer and function that is logging.
func WithFunction(ctx context.Context, module, function string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ModuleKey, module)
	return context.WithValue(ctx, FunctionKey, function)
}

func getString(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}

func GetRequestID(ctx context.Context) string { return getString(ctx, RequestIDKey) }
func GetClientIP(ctx context.Context) string  { return getString(ctx, ClientIPKey) }
func GetUserAgent(ctx context.Context) string { return getString(ctx, UserAgentKey) }
func GetUserID(ctx context.Context) string    { return getString(ctx, UserIDKey) }
func GetUserRole(ctx context.Context) string  { return getString(ctx, UserRoleKey) }
func GetModule(ctx context.Context) string    { return getString(ctx, ModuleKey) }
func GetFunction(ctx context.Context) string  { return getString(ctx, FunctionKey) }

func GetStartTime(ctx context.Context) time.Time {
	if ctx == nil {
		return time.Time{}
	}
	if val, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return val
	}
	return time.Time{}
}

// GetDuration calculates duration from start time
func GetDuration(ctx context.Context) time.Duration {
	startTime := GetStartTime(ctx)
	if !startTime.IsZero() {
		return time.Since(startTime)
	}
	return 0
}

// Detach returns a background context that keeps the tracking values of ctx
// but not its cancellation, for work that outlives the request.
func Detach(ctx context.Context) context.Context {
	out := context.Background()
	for _, key := range []ContextKey{RequestIDKey, UserIDKey, UserRoleKey, ClientIPKey, UserAgentKey} {
		if v := getString(ctx, key); v != "" {
			out = context.WithValue(out, key, v)
		}
	}
	return out
}
