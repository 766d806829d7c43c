// Package ledger implements the double-entry general ledger: balanced
// journal entries, posting/reversal, and account balance / trial balance
// calculation.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/nexum-core/ledger/internal/audit"
	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/money"
	"github.com/nexum-core/ledger/internal/storage"

	"github.com/google/uuid"
)

const entryTable = "journal_entries"

// Service is the general ledger. Every mutating operation runs inside a
// single storage.Store.Atomic scope and writes its audit event inside that
// same scope, so a failed audit write rolls the operation back.
type Service struct {
	store storage.Store
	audit *audit.Service
	clock func() time.Time
}

func NewService(store storage.Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// CreateJournalEntry validates and persists a new PENDING entry. If
// idempotencyKey is non-empty and an entry already exists with that key,
// the existing entry is returned instead of creating a duplicate.
func (s *Service) CreateJournalEntry(ctx context.Context, reference, description string, lines []Line, idempotencyKey string) (Entry, error) {
	var entry Entry
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		if idempotencyKey != "" {
			existing, err := s.findByIdempotencyKey(ctx, idempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				entry = *existing
				return nil
			}
		}

		now := s.clock().UTC()
		built, err := NewEntry(uuid.NewString(), now, reference, description, lines, idempotencyKey)
		if err != nil {
			return err
		}
		entry = built

		if err := s.store.Save(ctx, entryTable, entry.ID, entry.toDocument()); err != nil {
			return err
		}
		_, err = s.audit.LogEvent(ctx, audit.EventJournalEntryCreated, "journal_entry", entry.ID, map[string]any{
			"reference": entry.Reference,
		}, "", "")
		return err
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Service) findByIdempotencyKey(ctx context.Context, key string) (*Entry, error) {
	docs, err := s.store.Find(ctx, entryTable, storage.Document{"idempotency_key": key})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	e, err := entryFromDocument(docs[0])
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) GetJournalEntry(ctx context.Context, id string) (*Entry, error) {
	doc, ok, err := s.store.Load(ctx, entryTable, id)
	if err != nil || !ok {
		return nil, err
	}
	e, err := entryFromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PostJournalEntry transitions a PENDING entry to POSTED.
func (s *Service) PostJournalEntry(ctx context.Context, id string) (Entry, error) {
	var posted Entry
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		entry, err := s.GetJournalEntry(ctx, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return coreerr.NotFound("journal entry %q not found", id)
		}
		if err := entry.post(s.clock().UTC()); err != nil {
			return err
		}
		if err := s.store.Save(ctx, entryTable, entry.ID, entry.toDocument()); err != nil {
			return err
		}
		if _, err := s.audit.LogEvent(ctx, audit.EventJournalEntryPosted, "journal_entry", entry.ID, nil, "", ""); err != nil {
			return err
		}
		posted = *entry
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return posted, nil
}

// ReverseJournalEntry posts a new entry with every line's debit/credit
// swapped relative to the original, marks the original REVERSED, and
// returns the reversal (itself immediately POSTED).
func (s *Service) ReverseJournalEntry(ctx context.Context, id, reason string) (Entry, error) {
	var reversal Entry
	err := s.store.Atomic(ctx, func(ctx context.Context) error {
		original, err := s.GetJournalEntry(ctx, id)
		if err != nil {
			return err
		}
		if original == nil {
			return coreerr.NotFound("journal entry %q not found", id)
		}
		if original.State != StatePosted {
			return coreerr.Validation("cannot reverse journal entry in %s state", original.State)
		}

		now := s.clock().UTC()
		reversalID := uuid.NewString()
		rev, err := NewEntry(reversalID, now, "REV-"+original.Reference, reason, reversalLines(original.Lines), "")
		if err != nil {
			return err
		}
		rev.Reverses = original.ID
		if err := rev.post(now); err != nil {
			return err
		}

		if err := original.reverse(now, rev.ID); err != nil {
			return err
		}

		if err := s.store.Save(ctx, entryTable, rev.ID, rev.toDocument()); err != nil {
			return err
		}
		if err := s.store.Save(ctx, entryTable, original.ID, original.toDocument()); err != nil {
			return err
		}
		if _, err := s.audit.LogEvent(ctx, audit.EventJournalEntryReversed, "journal_entry", original.ID, map[string]any{
			"reversal_id": rev.ID,
			"reason":      reason,
		}, "", ""); err != nil {
			return err
		}

		reversal = rev
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return reversal, nil
}

type AccountEntryFilter struct {
	StateFilter *State
	StartDate   *time.Time
	EndDate     *time.Time
}

// GetEntriesForAccount returns every entry with at least one line touching
// accountID, sorted by creation time, optionally filtered by state and/or
// a creation-time window.
func (s *Service) GetEntriesForAccount(ctx context.Context, accountID string, filter AccountEntryFilter) ([]Entry, error) {
	docs, err := s.store.LoadAll(ctx, entryTable)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, doc := range docs {
		e, err := entryFromDocument(doc)
		if err != nil {
			return nil, err
		}
		if _, ok := e.GetAffectedAccounts()[accountID]; !ok {
			continue
		}
		if filter.StateFilter != nil && e.State != *filter.StateFilter {
			continue
		}
		if filter.StartDate != nil && e.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.CreatedAt.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CalculateAccountBalance sums POSTED lines for accountID in currencyCode
// and nets them according to accountType's normal side.
func (s *Service) CalculateAccountBalance(ctx context.Context, accountID string, accountType AccountType, currencyCode string) (money.Money, error) {
	posted := StatePosted
	entries, err := s.GetEntriesForAccount(ctx, accountID, AccountEntryFilter{StateFilter: &posted})
	if err != nil {
		return money.Money{}, err
	}

	totalDebit, err := money.Zero(currencyCode)
	if err != nil {
		return money.Money{}, err
	}
	totalCredit, err := money.Zero(currencyCode)
	if err != nil {
		return money.Money{}, err
	}
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID != accountID || l.CurrencyCode() != currencyCode {
				continue
			}
			totalDebit, err = totalDebit.Add(l.DebitAmount)
			if err != nil {
				return money.Money{}, err
			}
			totalCredit, err = totalCredit.Add(l.CreditAmount)
			if err != nil {
				return money.Money{}, err
			}
		}
	}

	if normalSideIsDebit(accountType) {
		return totalDebit.Sub(totalCredit)
	}
	return totalCredit.Sub(totalDebit)
}

// GetTrialBalance calculates the balance of every account in accountTypes,
// with one CalculateAccountBalance call per account.
func (s *Service) GetTrialBalance(ctx context.Context, accountTypes map[string]AccountType, currencyCode string) (map[string]money.Money, error) {
	out := make(map[string]money.Money, len(accountTypes))
	for accountID, accountType := range accountTypes {
		balance, err := s.CalculateAccountBalance(ctx, accountID, accountType, currencyCode)
		if err != nil {
			return nil, err
		}
		out[accountID] = balance
	}
	return out, nil
}
