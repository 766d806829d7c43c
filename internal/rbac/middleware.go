package rbac

import (
	"net/http"

	"github.com/nexum-core/ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

/*
RequireTenant enforces the multi-tenant invariant.
tenant_id MUST exist in context for all protected routes.
*/
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tid, err := auth.TenantID(c.Request.Context())
		if err != nil || tid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "tenant_id required",
			})
			return
		}
		c.Next()
	}
}

/*
RequireAnyRole allows access if caller has ANY allowed role.

Rules:
- super_admin bypasses all checks
- hidden roles are denied unless explicitly allowed
- tenant isolation enforced internally (fail-safe)
*/
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "role required",
			})
			return
		}

		// Super admin bypass
		if IsSuperAdmin(role) {
			c.Next()
			return
		}

		// Always enforce tenant, except for super_admin above.
		tid, err := auth.TenantID(c.Request.Context())
		if err != nil || tid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "tenant_id required",
			})
			return
		}

		// Role must be explicitly allowed.
		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden",
			})
			return
		}

		// Hidden roles must be explicitly listed.
		if IsHiddenRole(role) {
			if _, ok := allowedSet[role]; !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "forbidden",
				})
				return
			}
		}

		c.Next()
	}
}
