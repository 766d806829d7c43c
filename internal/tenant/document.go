package tenant

import (
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/storage"
)

func (t Tenant) toDocument() storage.Document {
	doc := storage.Document{
		"id":                t.ID,
		"name":              t.Name,
		"code":              t.Code,
		"display_name":      t.DisplayName,
		"description":       t.Description,
		"is_active":         t.IsActive,
		"created_at":        t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":        t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"settings":          t.Settings,
		"subscription_tier": string(t.SubscriptionTier),
		"contact_email":     t.ContactEmail,
		"contact_phone":     t.ContactPhone,
		"logo_url":          t.LogoURL,
		"primary_color":     t.PrimaryColor,
	}
	if t.MaxUsers != nil {
		doc["max_users"] = *t.MaxUsers
	}
	if t.MaxAccounts != nil {
		doc["max_accounts"] = *t.MaxAccounts
	}
	return doc
}

func fromDocument(doc storage.Document) (Tenant, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		return Tenant{}, coreerr.StorageFatal(nil, "tenant record missing id")
	}

	t := Tenant{
		ID:               id,
		Name:             str(doc, "name"),
		Code:             str(doc, "code"),
		DisplayName:      str(doc, "display_name"),
		Description:      str(doc, "description"),
		IsActive:         boolOr(doc, "is_active", true),
		Settings:         mapOr(doc, "settings"),
		SubscriptionTier: SubscriptionTier(str(doc, "subscription_tier")),
		ContactEmail:     str(doc, "contact_email"),
		ContactPhone:     str(doc, "contact_phone"),
		LogoURL:          str(doc, "logo_url"),
		PrimaryColor:     str(doc, "primary_color"),
	}
	if t.SubscriptionTier == "" {
		t.SubscriptionTier = TierFree
	}
	if v, ok := parseTime(doc["created_at"]); ok {
		t.CreatedAt = v
	}
	if v, ok := parseTime(doc["updated_at"]); ok {
		t.UpdatedAt = v
	}
	if n, ok := intOr(doc, "max_users"); ok {
		t.MaxUsers = &n
	}
	if n, ok := intOr(doc, "max_accounts"); ok {
		t.MaxAccounts = &n
	}
	return t, nil
}

func str(doc storage.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func boolOr(doc storage.Document, key string, fallback bool) bool {
	b, ok := doc[key].(bool)
	if !ok {
		return fallback
	}
	return b
}

func mapOr(doc storage.Document, key string) map[string]any {
	m, ok := doc[key].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func intOr(doc storage.Document, key string) (int, bool) {
	switch v := doc[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func parseTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
