// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// ActorContext identifies who a mutation is performed for. Tenant and
// user identity are resolved upstream (gateway) and injected by the
// tenant middleware; domain code only ever reads them from context.
type ActorContext struct {
	TenantID string
	UserID   string
}

type actorContextKey struct{}

// WithActor adds ActorContext to context.
func WithActor(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns ActorContext from context.
func GetActor(ctx context.Context) *ActorContext {
	if v, ok := ctx.Value(actorContextKey{}).(*ActorContext); ok {
		return v
	}
	return nil
}

// GetTenantID returns tenant ID from context or empty string.
func GetTenantID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.TenantID
	}
	return ""
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}
