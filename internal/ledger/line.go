package ledger

import (
	"github.com/nexum-core/ledger/internal/coreerr"
	"github.com/nexum-core/ledger/internal/money"
)

// Line is one side of a double-entry posting: exactly one of
// DebitAmount/CreditAmount is non-zero, and the other carries a zero of the
// same currency.
type Line struct {
	AccountID     string
	Description   string
	DebitAmount   money.Money
	CreditAmount  money.Money
}

func NewLine(accountID, description string, debit, credit money.Money) (Line, error) {
	if accountID == "" {
		return Line{}, coreerr.Validation("line account_id is required")
	}
	if debit.CurrencyCode() != credit.CurrencyCode() {
		return Line{}, coreerr.Validation("line debit/credit currency mismatch: %s vs %s", debit.CurrencyCode(), credit.CurrencyCode())
	}
	if !debit.IsZero() && !credit.IsZero() {
		return Line{}, coreerr.Validation("line cannot carry both a debit and a credit amount")
	}
	if debit.IsZero() && credit.IsZero() {
		return Line{}, coreerr.Validation("line must carry exactly one non-zero amount")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return Line{}, coreerr.Validation("line amounts must not be negative")
	}
	return Line{AccountID: accountID, Description: description, DebitAmount: debit, CreditAmount: credit}, nil
}

func (l Line) IsDebit() bool { return !l.DebitAmount.IsZero() }
func (l Line) IsCredit() bool { return !l.CreditAmount.IsZero() }

// Amount returns whichever of debit/credit is non-zero.
func (l Line) Amount() money.Money {
	if l.IsDebit() {
		return l.DebitAmount
	}
	return l.CreditAmount
}

func (l Line) CurrencyCode() string { return l.DebitAmount.CurrencyCode() }

// reversed returns the line with debit and credit swapped, used to build a
// reversing entry.
func (l Line) reversed() Line {
	return Line{
		AccountID:    l.AccountID,
		Description:  l.Description,
		DebitAmount:  l.CreditAmount,
		CreditAmount: l.DebitAmount,
	}
}
