// Package tenant models the financial institutions onboarded onto a single
// deployment: the Tenant registry itself, independent of the per-request
// isolation internal/tenancy provides.
package tenant

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionTier gates which plan-level features a tenant has access to.
type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "free"
	TierBasic        SubscriptionTier = "basic"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// Tenant represents one financial institution onboarded onto the platform.
type Tenant struct {
	ID             string
	Name           string
	Code           string // unique short code, e.g. "ACME_BANK"
	DisplayName    string
	Description    string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Settings       map[string]any
	MaxUsers       *int
	MaxAccounts    *int
	SubscriptionTier SubscriptionTier
	ContactEmail   string
	ContactPhone   string
	LogoURL        string
	PrimaryColor   string // hex branding color
}

// newID generates a fresh tenant ID. Broken out so tests can't accidentally
// depend on uuid's global RNG state.
func newID() string {
	return uuid.NewString()
}
