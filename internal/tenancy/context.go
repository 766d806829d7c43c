// Package tenancy propagates the ambient tenant identifier through a call
// chain via context.Context — the idiomatic Go analog of the thread-local
// / contextvar approach spec.md §9's Design Notes call for, and the same
// pattern the teacher already uses for workspace_id (internal/auth/context.go).
package tenancy

import "context"

type ctxKey struct{}

// WithTenant returns a derived context scoped to tenantID. Nesting is
// simply calling WithTenant again; the previous context (and therefore the
// previous tenant, or no tenant at all) is restored automatically once the
// derived context goes out of scope — there is nothing to "restore"
// explicitly, because each call returns a new, independent context value.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// FromContext returns the ambient tenant ID, or ok=false in super-admin mode
// (no tenant set).
func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// IsSuperAdmin reports whether ctx carries no tenant — the absence of a
// tenant is itself super-admin mode, not a separate flag.
func IsSuperAdmin(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return !ok
}
