package ledger

import (
	"time"

	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/money"
)

type State string

const (
	StatePending  State = "pending"
	StatePosted   State = "posted"
	StateReversed State = "reversed"
)

// Entry is a balanced group of Lines posted together or not at all.
type Entry struct {
	ID             string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Reference      string
	Description    string
	Lines          []Line
	State          State
	PostedAt       *time.Time
	Reverses       string // ID of the entry this one reverses, if any
	ReversedBy     string // ID of the reversal entry, once reversed
	IdempotencyKey string
}

// NewEntry validates and constructs a PENDING entry. An entry balances
// independently per currency: the sum of debits must equal the sum of
// credits within each currency present among its lines.
func NewEntry(id string, now time.Time, reference, description string, lines []Line, idempotencyKey string) (Entry, error) {
	if len(lines) == 0 {
		return Entry{}, coreerr.Validation("journal entry must have at least one line")
	}

	totals := map[string]struct{ debit, credit money.Money }{}
	for _, line := range lines {
		code := line.CurrencyCode()
		t, ok := totals[code]
		if !ok {
			zero, err := money.Zero(code)
			if err != nil {
				return Entry{}, err
			}
			t.debit = zero
			t.credit = zero
		}
		d, err := t.debit.Add(line.DebitAmount)
		if err != nil {
			return Entry{}, err
		}
		c, err := t.credit.Add(line.CreditAmount)
		if err != nil {
			return Entry{}, err
		}
		totals[code] = struct{ debit, credit money.Money }{d, c}
	}

	for code, t := range totals {
		eq, err := t.debit.Cmp(t.credit)
		if err != nil {
			return Entry{}, err
		}
		if eq != 0 {
			return Entry{}, coreerr.Validation("journal entry not balanced for currency %s: debits %s != credits %s", code, t.debit, t.credit)
		}
	}

	return Entry{
		ID:             id,
		CreatedAt:      now,
		UpdatedAt:      now,
		Reference:      reference,
		Description:    description,
		Lines:          lines,
		State:          StatePending,
		IdempotencyKey: idempotencyKey,
	}, nil
}

func (e Entry) CanBeModified() bool { return e.State == StatePending }

func (e Entry) GetAffectedAccounts() map[string]struct{} {
	out := make(map[string]struct{}, len(e.Lines))
	for _, l := range e.Lines {
		out[l.AccountID] = struct{}{}
	}
	return out
}

func (e Entry) GetCurrencies() map[string]struct{} {
	out := map[string]struct{}{}
	for _, l := range e.Lines {
		out[l.CurrencyCode()] = struct{}{}
	}
	return out
}

// GetTotalAmount returns the sum of debit amounts in currencyCode (equal to
// the sum of credits, by construction).
func (e Entry) GetTotalAmount(currencyCode string) (money.Money, error) {
	total, err := money.Zero(currencyCode)
	if err != nil {
		return money.Money{}, err
	}
	for _, l := range e.Lines {
		if l.CurrencyCode() != currencyCode || !l.IsDebit() {
			continue
		}
		total, err = total.Add(l.DebitAmount)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// post transitions a PENDING entry to POSTED in place.
func (e *Entry) post(now time.Time) error {
	if e.State != StatePending {
		return coreerr.Validation("cannot post journal entry in %s state", e.State)
	}
	e.State = StatePosted
	e.PostedAt = &now
	e.UpdatedAt = now
	return nil
}

// reverse transitions a POSTED entry to REVERSED in place, recording the ID
// of the reversal entry that offsets it.
func (e *Entry) reverse(now time.Time, reversalID string) error {
	if e.State != StatePosted {
		return coreerr.Validation("cannot reverse journal entry in %s state", e.State)
	}
	e.State = StateReversed
	e.ReversedBy = reversalID
	e.UpdatedAt = now
	return nil
}

// reversalLines builds the offsetting lines for a reversing entry: every
// debit becomes a credit and vice versa, same accounts and amounts.
func reversalLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.reversed()
	}
	return out
}
