package tenant

import (
	"context"
	"strings"
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"
)

const tenantTable = "tenants"

// Manager owns the tenant registry. It is constructed over the raw,
// non-tenant-filtered store — the registry itself has no owning tenant.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

type CreateParams struct {
	Name             string
	Code             string
	DisplayName      string
	Description      string
	Settings         map[string]any
	MaxUsers         *int
	MaxAccounts      *int
	SubscriptionTier SubscriptionTier
	ContactEmail     string
	ContactPhone     string
	LogoURL          string
	PrimaryColor     string
	// TenantID overrides the generated ID; leave empty in normal use.
	TenantID string
}

func (m *Manager) CreateTenant(ctx context.Context, now time.Time, p CreateParams) (Tenant, error) {
	if p.Name == "" || p.Code == "" || p.DisplayName == "" {
		return Tenant{}, coreerr.Validation("name, code and display_name are required")
	}
	// Codes are matched case-insensitively against subdomains (§6), so the
	// stored code is canonicalized to upper case.
	p.Code = strings.ToUpper(p.Code)

	if existing, err := m.GetTenantByCode(ctx, p.Code); err != nil {
		return Tenant{}, err
	} else if existing != nil {
		return Tenant{}, coreerr.Validation("tenant code %q already exists", p.Code)
	}

	id := p.TenantID
	if id == "" {
		id = newID()
	}
	tier := p.SubscriptionTier
	if tier == "" {
		tier = TierFree
	}
	settings := p.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	t := Tenant{
		ID:               id,
		Name:             p.Name,
		Code:             p.Code,
		DisplayName:      p.DisplayName,
		Description:      p.Description,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
		Settings:         settings,
		MaxUsers:         p.MaxUsers,
		MaxAccounts:      p.MaxAccounts,
		SubscriptionTier: tier,
		ContactEmail:     p.ContactEmail,
		ContactPhone:     p.ContactPhone,
		LogoURL:          p.LogoURL,
		PrimaryColor:     p.PrimaryColor,
	}

	if err := m.store.Save(ctx, tenantTable, t.ID, t.toDocument()); err != nil {
		return Tenant{}, err
	}
	return t, nil
}

func (m *Manager) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	doc, ok, err := m.store.Load(ctx, tenantTable, tenantID)
	if err != nil || !ok {
		return nil, err
	}
	t, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTenantByCode looks up a tenant by its code, matched case-insensitively:
// code is normalized to the same upper-case form CreateTenant stores.
func (m *Manager) GetTenantByCode(ctx context.Context, code string) (*Tenant, error) {
	docs, err := m.store.Find(ctx, tenantTable, storage.Document{"code": strings.ToUpper(code)})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	t, err := fromDocument(docs[0])
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *Manager) ListTenants(ctx context.Context, activeOnly bool) ([]Tenant, error) {
	var docs []storage.Document
	var err error
	if activeOnly {
		docs, err = m.store.Find(ctx, tenantTable, storage.Document{"is_active": true})
	} else {
		docs, err = m.store.LoadAll(ctx, tenantTable)
	}
	if err != nil {
		return nil, err
	}
	out := make([]Tenant, 0, len(docs))
	for _, doc := range docs {
		t, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UpdateFunc mutates a loaded tenant in place; UpdateTenant persists the
// result and refreshes UpdatedAt.
type UpdateFunc func(t *Tenant)

func (m *Manager) UpdateTenant(ctx context.Context, now time.Time, tenantID string, mutate UpdateFunc) (*Tenant, error) {
	t, err := m.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, coreerr.NotFound("tenant %q not found", tenantID)
	}
	mutate(t)
	t.UpdatedAt = now
	if err := m.store.Save(ctx, tenantTable, t.ID, t.toDocument()); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Manager) ActivateTenant(ctx context.Context, now time.Time, tenantID string) error {
	_, err := m.UpdateTenant(ctx, now, tenantID, func(t *Tenant) { t.IsActive = true })
	return err
}

func (m *Manager) DeactivateTenant(ctx context.Context, now time.Time, tenantID string) error {
	_, err := m.UpdateTenant(ctx, now, tenantID, func(t *Tenant) { t.IsActive = false })
	return err
}

// CheckQuota reports whether tenantID may consume one more unit of
// resourceType ("users" or "accounts"), given its current usage count.
// A nil quota on the tenant means unlimited.
func (m *Manager) CheckQuota(ctx context.Context, tenantID, resourceType string, currentUsage int) (bool, error) {
	t, err := m.GetTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if t == nil || !t.IsActive {
		return false, nil
	}

	switch resourceType {
	case "users":
		if t.MaxUsers == nil {
			return true, nil
		}
		return currentUsage < *t.MaxUsers, nil
	case "accounts":
		if t.MaxAccounts == nil {
			return true, nil
		}
		return currentUsage < *t.MaxAccounts, nil
	default:
		return true, nil
	}
}

// Stats is a point-in-time usage snapshot for one tenant.
type Stats struct {
	TenantID         string
	UserCount        int
	AccountCount     int
	TransactionCount int
	LastActivity     *time.Time
}
