// Package reporting aggregates the general ledger into read-only views:
// trial balances and per-account activity summaries. It never writes to
// the ledger; every method is a query over ledger.Service.
package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/nexum-core/ledger/internal/ledger"
	"github.com/nexum-core/ledger/internal/money"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Ledger is the subset of ledger.Service reporting depends on.
type Ledger interface {
	GetTrialBalance(ctx context.Context, accountTypes map[string]ledger.AccountType, currencyCode string) (map[string]money.Money, error)
	GetEntriesForAccount(ctx context.Context, accountID string, filter ledger.AccountEntryFilter) ([]ledger.Entry, error)
	CalculateAccountBalance(ctx context.Context, accountID string, accountType ledger.AccountType, currencyCode string) (money.Money, error)
}

type Service struct {
	ledger Ledger
	clock  func() time.Time
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l, clock: time.Now}
}

func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// GenerateTrialBalance calculates every requested account's posted balance
// and checks that debit-normal accounts sum to credit-normal accounts.
func (s *Service) GenerateTrialBalance(ctx context.Context, req TrialBalanceRequest) (TrialBalanceReport, error) {
	if len(req.AccountTypes) == 0 || req.CurrencyCode == "" {
		return TrialBalanceReport{}, ErrInvalidRequest
	}

	balances, err := s.ledger.GetTrialBalance(ctx, req.AccountTypes, req.CurrencyCode)
	if err != nil {
		return TrialBalanceReport{}, err
	}

	zeroDebit, err := money.Zero(req.CurrencyCode)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	zeroCredit, err := money.Zero(req.CurrencyCode)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	report := TrialBalanceReport{
		CurrencyCode: req.CurrencyCode,
		GeneratedAt:  s.clock().UTC(),
		DebitTotal:   zeroDebit,
		CreditTotal:  zeroCredit,
	}

	accountIDs := make([]string, 0, len(req.AccountTypes))
	for id := range req.AccountTypes {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	for _, accountID := range accountIDs {
		accountType := req.AccountTypes[accountID]
		balance := balances[accountID]
		report.Lines = append(report.Lines, TrialBalanceLine{
			AccountID:   accountID,
			AccountType: accountType,
			Balance:     balance,
		})

		// A debit-normal account's positive balance belongs on the debit
		// side of the trial balance; a credit-normal account's on the
		// credit side. Either side can also go negative (a debit-normal
		// account overdrawn into credit territory, and vice versa).
		if normalSideIsDebit(accountType) {
			report.DebitTotal, err = addSigned(report.DebitTotal, balance)
		} else {
			report.CreditTotal, err = addSigned(report.CreditTotal, balance)
		}
		if err != nil {
			return TrialBalanceReport{}, err
		}
	}

	eq, err := report.DebitTotal.Cmp(report.CreditTotal)
	if err != nil {
		return TrialBalanceReport{}, err
	}
	report.Balanced = eq == 0
	return report, nil
}

// addSigned adds balance to total. A negative balance (money.Money holds one
// after a Sub that went below zero) is added by subtracting its absolute
// value, which gives the same sum as adding it directly.
func addSigned(total, balance money.Money) (money.Money, error) {
	if balance.IsNegative() {
		return total.Sub(balance.Negate())
	}
	return total.Add(balance)
}

func normalSideIsDebit(accountType ledger.AccountType) bool {
	switch accountType {
	case ledger.AccountAsset, ledger.AccountExpense:
		return true
	default:
		return false
	}
}

// GenerateAccountActivity summarizes every entry touching one account:
// counts by state and debit/credit totals across whatever entries
// GetEntriesForAccount returns for the given filter.
func (s *Service) GenerateAccountActivity(ctx context.Context, req AccountActivityRequest) (AccountActivitySummary, error) {
	if req.AccountID == "" || req.CurrencyCode == "" {
		return AccountActivitySummary{}, ErrInvalidRequest
	}

	entries, err := s.ledger.GetEntriesForAccount(ctx, req.AccountID, ledger.AccountEntryFilter{
		StateFilter: req.StateFilter,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return AccountActivitySummary{}, err
	}

	zeroDebit, err := money.Zero(req.CurrencyCode)
	if err != nil {
		return AccountActivitySummary{}, err
	}
	zeroCredit, err := money.Zero(req.CurrencyCode)
	if err != nil {
		return AccountActivitySummary{}, err
	}
	summary := AccountActivitySummary{
		AccountID:   req.AccountID,
		EntryCount:  len(entries),
		DebitTotal:  zeroDebit,
		CreditTotal: zeroCredit,
	}

	for _, entry := range entries {
		switch entry.State {
		case ledger.StatePosted:
			summary.PostedCount++
		case ledger.StatePending:
			summary.PendingCount++
		case ledger.StateReversed:
			summary.ReversedCount++
		}

		for _, line := range entry.Lines {
			if line.AccountID != req.AccountID || line.CurrencyCode() != req.CurrencyCode {
				continue
			}
			summary.DebitTotal, err = summary.DebitTotal.Add(line.DebitAmount)
			if err != nil {
				return AccountActivitySummary{}, err
			}
			summary.CreditTotal, err = summary.CreditTotal.Add(line.CreditAmount)
			if err != nil {
				return AccountActivitySummary{}, err
			}
		}
	}

	summary.EndingBalance, err = s.ledger.CalculateAccountBalance(ctx, req.AccountID, req.AccountType, req.CurrencyCode)
	if err != nil {
		return AccountActivitySummary{}, err
	}
	return summary, nil
}
