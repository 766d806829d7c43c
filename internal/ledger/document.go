package ledger

import (
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/money"
	"github.com/nexum-core/ledger/internal/storage"
)

// moneyToMap encodes a Money as the stable {amount,currency} envelope.
func moneyToMap(m money.Money) map[string]any {
	return map[string]any{
		"amount":   m.Decimal().String(),
		"currency": m.CurrencyCode(),
	}
}

func moneyFromMap(raw any) (money.Money, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return money.Money{}, coreerr.StorageFatal(nil, "malformed money value")
	}
	amount, _ := m["amount"].(string)
	currency, _ := m["currency"].(string)
	return money.NewFromString(amount, currency)
}

func lineToMap(l Line) map[string]any {
	return map[string]any{
		"account_id":    l.AccountID,
		"description":   l.Description,
		"debit_amount":  moneyToMap(l.DebitAmount),
		"credit_amount": moneyToMap(l.CreditAmount),
	}
}

func lineFromMap(m map[string]any) (Line, error) {
	debit, err := moneyFromMap(m["debit_amount"])
	if err != nil {
		return Line{}, err
	}
	credit, err := moneyFromMap(m["credit_amount"])
	if err != nil {
		return Line{}, err
	}
	accountID, _ := m["account_id"].(string)
	description, _ := m["description"].(string)
	return Line{AccountID: accountID, Description: description, DebitAmount: debit, CreditAmount: credit}, nil
}

func (e Entry) toDocument() storage.Document {
	lines := make([]any, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = lineToMap(l)
	}
	doc := storage.Document{
		"id":              e.ID,
		"created_at":      e.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":      e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"reference":       e.Reference,
		"description":     e.Description,
		"lines":           lines,
		"state":           string(e.State),
		"reverses":        e.Reverses,
		"reversed_by":     e.ReversedBy,
		"idempotency_key": e.IdempotencyKey,
	}
	if e.PostedAt != nil {
		doc["posted_at"] = e.PostedAt.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func entryFromDocument(doc storage.Document) (Entry, error) {
	rawLines, _ := doc["lines"].([]any)
	lines := make([]Line, 0, len(rawLines))
	for _, raw := range rawLines {
		m, ok := raw.(map[string]any)
		if !ok {
			return Entry{}, coreerr.StorageFatal(nil, "malformed journal entry line")
		}
		line, err := lineFromMap(m)
		if err != nil {
			return Entry{}, err
		}
		lines = append(lines, line)
	}

	e := Entry{
		ID:             strOf(doc, "id"),
		Reference:      strOf(doc, "reference"),
		Description:    strOf(doc, "description"),
		Lines:          lines,
		State:          State(strOf(doc, "state")),
		Reverses:       strOf(doc, "reverses"),
		ReversedBy:     strOf(doc, "reversed_by"),
		IdempotencyKey: strOf(doc, "idempotency_key"),
	}
	if t, err := time.Parse(time.RFC3339Nano, strOf(doc, "created_at")); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, strOf(doc, "updated_at")); err == nil {
		e.UpdatedAt = t
	}
	if s := strOf(doc, "posted_at"); s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			e.PostedAt = &t
		}
	}
	return e, nil
}

func strOf(doc storage.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}
