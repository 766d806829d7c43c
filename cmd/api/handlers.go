package main

import (
	"net/http"
	"time"

	"github.com/nexum-core/ledger/internal/audit"
	"github.com/nexum-core/ledger/internal/auth"
	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/ledger"
	"github.com/nexum-core/ledger/internal/money"
	"github.com/nexum-core/ledger/internal/reporting"
	"github.com/nexum-core/ledger/internal/tenant"

	"github.com/gin-gonic/gin"
)

// apiDeps carries every service registerRoutes wires into handlers. Keep
// this file free of business logic: handlers translate HTTP <-> service
// calls and nothing else.
type apiDeps struct {
	authManager *auth.Manager
	tenants     *tenant.Manager
	audit       *audit.Service
	ledger      *ledger.Service
	reporting   *reporting.Service
}

func httpStatusFor(err error) int {
	switch {
	case coreerr.Is(err, coreerr.KindValidation):
		return http.StatusBadRequest
	case coreerr.Is(err, coreerr.KindNotFound):
		return http.StatusNotFound
	case coreerr.Is(err, coreerr.KindTenantViolation):
		return http.StatusForbidden
	case coreerr.Is(err, coreerr.KindConcurrencyConflict):
		return http.StatusConflict
	case coreerr.Is(err, coreerr.KindStorageTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(httpStatusFor(err), gin.H{"error": err.Error()})
}

type lineRequest struct {
	AccountID    string `json:"account_id" binding:"required"`
	Description  string `json:"description"`
	DebitAmount  string `json:"debit_amount"`
	CreditAmount string `json:"credit_amount"`
	CurrencyCode string `json:"currency_code" binding:"required"`
}

type createEntryRequest struct {
	Reference      string        `json:"reference" binding:"required"`
	Description    string        `json:"description"`
	Lines          []lineRequest `json:"lines" binding:"required,min=2"`
	IdempotencyKey string        `json:"idempotency_key"`
}

func (deps apiDeps) createJournalEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]ledger.Line, 0, len(req.Lines))
	for _, lr := range req.Lines {
		if lr.DebitAmount == "" {
			lr.DebitAmount = "0"
		}
		if lr.CreditAmount == "" {
			lr.CreditAmount = "0"
		}
		debit, err := money.NewFromString(lr.DebitAmount, lr.CurrencyCode)
		if err != nil {
			abortWithError(c, err)
			return
		}
		credit, err := money.NewFromString(lr.CreditAmount, lr.CurrencyCode)
		if err != nil {
			abortWithError(c, err)
			return
		}
		line, err := ledger.NewLine(lr.AccountID, lr.Description, debit, credit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		lines = append(lines, line)
	}

	entry, err := deps.ledger.CreateJournalEntry(c.Request.Context(), req.Reference, req.Description, lines, req.IdempotencyKey)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (deps apiDeps) getJournalEntry(c *gin.Context) {
	entry, err := deps.ledger.GetJournalEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if entry == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "journal entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (deps apiDeps) postJournalEntry(c *gin.Context) {
	entry, err := deps.ledger.PostJournalEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type reverseEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (deps apiDeps) reverseJournalEntry(c *gin.Context) {
	var req reverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reversal, err := deps.ledger.ReverseJournalEntry(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reversal)
}

func (deps apiDeps) getAccountBalance(c *gin.Context) {
	accountType := ledger.AccountType(c.Query("account_type"))
	currency := c.DefaultQuery("currency", "USD")

	balance, err := deps.ledger.CalculateAccountBalance(c.Request.Context(), c.Param("account_id"), accountType, currency)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account_id": c.Param("account_id"),
		"currency":   currency,
		"balance":    balance.Decimal().String(),
	})
}

type trialBalanceRequest struct {
	AccountTypes map[string]ledger.AccountType `json:"account_types" binding:"required"`
	CurrencyCode string                        `json:"currency_code" binding:"required"`
}

func (deps apiDeps) getTrialBalance(c *gin.Context) {
	var req trialBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := deps.reporting.GenerateTrialBalance(c.Request.Context(), reporting.TrialBalanceRequest{
		AccountTypes: req.AccountTypes,
		CurrencyCode: req.CurrencyCode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (deps apiDeps) verifyAuditIntegrity(c *gin.Context) {
	report, err := deps.audit.VerifyIntegrity(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type createTenantRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Code             string                  `json:"code" binding:"required"`
	DisplayName      string                  `json:"display_name"`
	ContactEmail     string                  `json:"contact_email"`
	SubscriptionTier tenant.SubscriptionTier `json:"subscription_tier"`
}

func (deps apiDeps) createTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := deps.tenants.CreateTenant(c.Request.Context(), time.Now().UTC(), tenant.CreateParams{
		Name:             req.Name,
		Code:             req.Code,
		DisplayName:      req.DisplayName,
		ContactEmail:     req.ContactEmail,
		SubscriptionTier: req.SubscriptionTier,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (deps apiDeps) getTenant(c *gin.Context) {
	t, err := deps.tenants.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if t == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (deps apiDeps) listTenants(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	tenants, err := deps.tenants.ListTenants(c.Request.Context(), activeOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenants)
}

func (deps apiDeps) deactivateTenant(c *gin.Context) {
	if err := deps.tenants.DeactivateTenant(c.Request.Context(), time.Now().UTC(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (deps apiDeps) whoAmI(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	tid, _ := auth.TenantID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "tenant_id": tid, "role": role})
}
