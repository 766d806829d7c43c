package reporting

import (
	"time"

	"github.com/nexum-core/ledger/internal/ledger"
	"github.com/nexum-core/ledger/internal/money"
)

// TrialBalanceRequest requests a trial balance over a fixed chart of
// accounts. AccountTypes maps account ID to the normal side used to
// calculate its balance.
type TrialBalanceRequest struct {
	AccountTypes map[string]ledger.AccountType `json:"account_types"`
	CurrencyCode string                        `json:"currency_code"`
}

type TrialBalanceLine struct {
	AccountID   string            `json:"account_id"`
	AccountType ledger.AccountType `json:"account_type"`
	Balance     money.Money       `json:"balance"`
}

// TrialBalanceReport is a snapshot of every requested account's posted
// balance plus a zero-sum check across the debit-normal and credit-normal
// sides.
type TrialBalanceReport struct {
	CurrencyCode string             `json:"currency_code"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Lines        []TrialBalanceLine `json:"lines"`
	DebitTotal   money.Money        `json:"debit_total"`
	CreditTotal  money.Money        `json:"credit_total"`
	Balanced     bool               `json:"balanced"`
}

// AccountActivityRequest requests a summary of journal activity touching
// one account.
type AccountActivityRequest struct {
	AccountID    string
	AccountType  ledger.AccountType
	CurrencyCode string
	StateFilter  *ledger.State
	StartDate    *time.Time
	EndDate      *time.Time
}

// AccountActivitySummary aggregates the entries returned by
// ledger.Service.GetEntriesForAccount for one account.
type AccountActivitySummary struct {
	AccountID      string      `json:"account_id"`
	EntryCount     int         `json:"entry_count"`
	PostedCount    int         `json:"posted_count"`
	PendingCount   int         `json:"pending_count"`
	ReversedCount  int         `json:"reversed_count"`
	DebitTotal     money.Money `json:"debit_total"`
	CreditTotal    money.Money `json:"credit_total"`
	EndingBalance  money.Money `json:"ending_balance"`
}
