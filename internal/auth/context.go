package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxTenantID
	ctxRole
)

func WithIdentity(ctx context.Context, userID, tenantID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxTenantID, tenantID)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func TenantID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxTenantID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("tenant_id not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}

// Gin context keys, set alongside the request context in RequireAccessToken
// so handlers can read identity without reaching back into ctx.
const (
	ginKeyUserID   = "user_id"
	ginKeyTenantID = "tenant_id"
	ginKeyRole     = "role"
)

func UserIDFromGin(c *gin.Context) (string, error) {
	v, ok := c.Get(ginKeyUserID)
	if s, okStr := v.(string); ok && okStr && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in gin context")
}

// TenantIDFromGin returns the resolved tenant for the request. A super-admin
// request carries no tenant, so an empty string with ok=true is a valid,
// non-error result here; callers that require a tenant must check for "".
func TenantIDFromGin(c *gin.Context) (string, error) {
	v, ok := c.Get(ginKeyTenantID)
	if s, okStr := v.(string); ok && okStr {
		return s, nil
	}
	return "", errors.New("tenant_id not in gin context")
}

func RoleFromGin(c *gin.Context) (string, error) {
	v, ok := c.Get(ginKeyRole)
	if s, okStr := v.(string); ok && okStr && s != "" {
		return s, nil
	}
	return "", errors.New("role not in gin context")
}
