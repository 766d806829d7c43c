package main

import (
	"net/http"

	"github.com/nexum-core/ledger/internal/auth"
	"github.com/nexum-core/ledger/internal/rbac"
	"github.com/nexum-core/ledger/internal/tenant"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps apiDeps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(tenant.ResolveTenant(deps.tenants))
	v1.Use(auth.RequireAccessToken(deps.authManager))
	{
		v1.GET("/me", deps.whoAmI)

		// JOURNAL ENTRIES
		entries := v1.Group("/journal-entries")
		entries.Use(rbac.RequireTenant())
		{
			entries.POST("", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAccountant, rbac.RoleSuperAdmin), deps.createJournalEntry)
			entries.GET("/:id", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAccountant, rbac.RoleAuditor, rbac.RoleAnalyst, rbac.RoleSuperAdmin), deps.getJournalEntry)
			entries.POST("/:id/post", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAccountant, rbac.RoleSuperAdmin), deps.postJournalEntry)
			entries.POST("/:id/reverse", rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAccountant, rbac.RoleSuperAdmin), deps.reverseJournalEntry)
		}

		// ACCOUNTS (read-only balance/reporting surface over the ledger)
		accounts := v1.Group("/accounts")
		accounts.Use(rbac.RequireTenant())
		accounts.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAccountant, rbac.RoleAuditor, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			accounts.GET("/:account_id/balance", deps.getAccountBalance)
		}

		// REPORTING
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireTenant())
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAuditor, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			reports.POST("/trial-balance", deps.getTrialBalance)
		}

		// AUDIT
		auditRoutes := v1.Group("/audit")
		auditRoutes.Use(rbac.RequireTenant())
		auditRoutes.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAuditor, rbac.RoleSuperAdmin))
		{
			auditRoutes.GET("/verify", deps.verifyAuditIntegrity)
		}

		// TENANT ADMIN (super_admin only; these pass through
		// tenant.ResolveTenant like the rest of v1, but operate on the
		// un-scoped tenant registry, which the resolved tenant does not filter)
		admin := v1.Group("/admin/tenants")
		admin.Use(rbac.RequireAnyRole(rbac.RoleSuperAdmin))
		{
			admin.POST("", deps.createTenant)
			admin.GET("", deps.listTenants)
			admin.GET("/:id", deps.getTenant)
			admin.POST("/:id/deactivate", deps.deactivateTenant)
		}
	}
}
