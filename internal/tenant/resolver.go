package tenant

import (
	"net/http"
	"strings"

	"github.com/nexum-core/ledger/internal/auth"
	"github.com/nexum-core/ledger/internal/tenancy"

	"github.com/gin-gonic/gin"
)

const tenantHeader = "X-Tenant-ID"

// ResolveTenant implements the boundary tenant-resolution precedence:
// (1) X-Tenant-ID header (exact id), (2) subdomain match against tenant
// code, (3) the tenant_id claim already placed on the request by
// auth.RequireAccessToken. Unresolved means super-admin mode — callers
// that require a tenant must pair this with RequireResolvedTenant.
func ResolveTenant(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(tenantHeader)

		if tenantID == "" {
			if code, ok := subdomainCode(c.Request.Host); ok {
				t, err := m.GetTenantByCode(c.Request.Context(), code)
				if err == nil && t != nil {
					tenantID = t.ID
				}
			}
		}

		if tenantID == "" {
			if claimed, err := auth.TenantIDFromGin(c); err == nil {
				tenantID = claimed
			}
		}

		if tenantID != "" {
			ctx := tenancy.WithTenant(c.Request.Context(), tenantID)
			c.Request = c.Request.WithContext(ctx)
			c.Set("resolved_tenant_id", tenantID)
		}

		c.Next()
	}
}

// RequireResolvedTenant rejects requests that resolved to super-admin mode.
// Mount it after ResolveTenant on routes that must never run tenant-less.
func RequireResolvedTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenancy.IsSuperAdmin(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant could not be resolved"})
			return
		}
		c.Next()
	}
}

// subdomainCode extracts the leftmost label of host as a candidate tenant
// code, e.g. "acme-bank.ledger.example.com" -> "ACME-BANK". Upper-cased to
// match the canonical form GetTenantByCode stores and compares against.
// Returns ok=false for bare hostnames/IPs with no subdomain to match against.
func subdomainCode(host string) (string, bool) {
	host = strings.Split(host, ":")[0]
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return "", false
	}
	return strings.ToUpper(parts[0]), true
}
