package tenancy

import (
	"context"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"
)

// TenantField is the private field TenantAwareStorage stamps onto every
// record written under a tenant. It is never exposed in the public
// envelope (spec.md §6) beyond this field name.
const TenantField = "_tenant_id"

// AwareStorage decorates a storage.Store with per-tenant read/write
// filtering, driven entirely by the ambient tenant carried on ctx. See
// spec.md §4.3 for the exact isolation semantics.
type AwareStorage struct {
	inner storage.Store
}

func NewAwareStorage(inner storage.Store) *AwareStorage {
	return &AwareStorage{inner: inner}
}

func (a *AwareStorage) tag(ctx context.Context, data storage.Document) storage.Document {
	tenantID, ok := FromContext(ctx)
	if !ok {
		return data
	}
	out := make(storage.Document, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out[TenantField] = tenantID
	return out
}

// visible reports whether doc is visible under the ambient tenant context:
// in super-admin mode (no tenant) everything is visible; under a tenant,
// only records tagged with that same tenant are visible. Untagged records
// are invisible once any tenant is ambient.
func (a *AwareStorage) visible(ctx context.Context, doc storage.Document) bool {
	tenantID, ok := FromContext(ctx)
	if !ok {
		return true
	}
	recordTenant, _ := doc[TenantField].(string)
	return recordTenant == tenantID
}

func (a *AwareStorage) Save(ctx context.Context, table, id string, data storage.Document) error {
	if _, ok := FromContext(ctx); ok {
		existing, found, err := a.inner.Load(ctx, table, id)
		if err != nil {
			return err
		}
		if found && !a.visible(ctx, existing) {
			return coreerr.NotFound("%s/%s not found", table, id)
		}
	}
	return a.inner.Save(ctx, table, id, a.tag(ctx, data))
}

func (a *AwareStorage) Load(ctx context.Context, table, id string) (storage.Document, bool, error) {
	doc, ok, err := a.inner.Load(ctx, table, id)
	if err != nil || !ok {
		return nil, false, err
	}
	if !a.visible(ctx, doc) {
		return nil, false, nil
	}
	return doc, true, nil
}

func (a *AwareStorage) LoadAll(ctx context.Context, table string) ([]storage.Document, error) {
	all, err := a.inner.LoadAll(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Document, 0, len(all))
	for _, doc := range all {
		if a.visible(ctx, doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (a *AwareStorage) Delete(ctx context.Context, table, id string) (bool, error) {
	doc, ok, err := a.inner.Load(ctx, table, id)
	if err != nil {
		return false, err
	}
	if !ok || !a.visible(ctx, doc) {
		return false, nil
	}
	return a.inner.Delete(ctx, table, id)
}

func (a *AwareStorage) Exists(ctx context.Context, table, id string) (bool, error) {
	_, ok, err := a.Load(ctx, table, id)
	return ok, err
}

func (a *AwareStorage) Find(ctx context.Context, table string, filter storage.Document) ([]storage.Document, error) {
	all, err := a.inner.Find(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	out := make([]storage.Document, 0, len(all))
	for _, doc := range all {
		if a.visible(ctx, doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (a *AwareStorage) Count(ctx context.Context, table string) (int, error) {
	all, err := a.LoadAll(ctx, table)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// ClearTable is an administrative operation forbidden once a tenant is
// ambient — it would otherwise let a tenant wipe data it cannot fully see.
func (a *AwareStorage) ClearTable(ctx context.Context, table string) error {
	if _, ok := FromContext(ctx); ok {
		return coreerr.TenantViolation("clear_table is not permitted under a tenant scope")
	}
	return a.inner.ClearTable(ctx, table)
}

// Atomic passes through unchanged: the ambient tenant travels on ctx
// regardless of which transaction boundary wraps it.
func (a *AwareStorage) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return a.inner.Atomic(ctx, fn)
}
