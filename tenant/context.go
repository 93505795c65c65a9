package tenant

import (
	"context"
	"regexp"
)

type contextKey int

const (
	tenantIDKey contextKey = iota
	systemScopeKey
)

// MaxIDLength bounds tenant identifiers; anything longer is treated as
// malformed.
const MaxIDLength = 64

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id is a well-formed tenant identifier
// (alphanumeric, dash, underscore).
func ValidID(id string) bool {
	return id != "" && len(id) <= MaxIDLength && idPattern.MatchString(id)
}

// WithID binds a tenant identifier to the context. A blank or malformed id
// shadows any tenant carried by the parent context instead of being stored,
// so a partially initialised tenant can never leak into a scoped query.
func WithID(ctx context.Context, id string) context.Context {
	if !ValidID(id) {
		id = ""
	}
	return context.WithValue(ctx, tenantIDKey, id)
}

// FromContext returns the tenant identifier bound to ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(tenantIDKey).(string)
	if id == "" {
		return "", false
	}
	return id, true
}

// WithSystemScope marks ctx for cross-tenant data access. The scope is
// carried by the derived context only; callers get it through RunAsSystem so
// every bypass is logged and bounded to one function call.
func WithSystemScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, systemScopeKey, true)
}

// IsSystemScope reports whether ctx is allowed to read and write across
// tenants.
func IsSystemScope(ctx context.Context) bool {
	v, _ := ctx.Value(systemScopeKey).(bool)
	return v
}
