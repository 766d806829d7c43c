// Package money implements exact-decimal, currency-tagged monetary
// arithmetic. Money is an immutable value type; every operator that could
// mix currencies returns a ValidationError (CurrencyMismatch) instead of
// silently coercing.
//
// Amounts are backed by shopspring/decimal (arbitrary-precision, base-10),
// never by a binary float — spec.md §1 makes this a hard Non-goal.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/nexum-core/ledger/internal/coreerr"
)

// Money is an immutable amount tagged with its currency. The zero value is
// not meaningful; construct via New/NewFromString/Zero.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New constructs a Money from a decimal.Decimal and a known currency code.
func New(amount decimal.Decimal, currencyCode string) (Money, error) {
	cur, err := LookupCurrency(currencyCode)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// NewFromString parses amount as a base-10 decimal string. Returns a
// ValidationError if the string is not a valid decimal or the currency is
// unknown.
func NewFromString(amount, currencyCode string) (Money, error) {
	cur, err := LookupCurrency(currencyCode)
	if err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, coreerr.Validation("invalid amount %q: %v", amount, err)
	}
	return Money{amount: d, currency: cur}, nil
}

// Zero returns a zero-value Money in the given currency.
func Zero(currencyCode string) (Money, error) {
	return New(decimal.Zero, currencyCode)
}

func (m Money) Currency() Currency        { return m.currency }
func (m Money) CurrencyCode() string      { return m.currency.Code }
func (m Money) Decimal() decimal.Decimal  { return m.amount }

func (m Money) sameCurrency(other Money) error {
	if m.currency.Code != other.currency.Code {
		return coreerr.Validation("currency mismatch: %s vs %s", m.currency.Code, other.currency.Code)
	}
	return nil
}

// Add returns m+other. Fails with a ValidationError (CurrencyMismatch) if
// currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m-other. Fails with a ValidationError (CurrencyMismatch) if
// currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MulScalar returns m*scalar. scalar is an exact decimal; no rounding is
// applied here (see RoundToMinorUnits).
func (m Money) MulScalar(scalar decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(scalar), currency: m.currency}
}

// RoundingMode selects how DivScalar rounds a non-terminating quotient.
type RoundingMode int

const (
	// RoundHalfEven is the default: banker's rounding, ties go to the even digit.
	RoundHalfEven RoundingMode = iota
	RoundHalfUp
	RoundDown
	RoundUp
)

// divScale is the working precision kept when dividing before rounding down
// to the currency's minor-unit digits: 28 digits after the decimal point.
const divScale = 28

// DivScalar returns m/scalar, rounded per mode at divScale digits of
// precision (not yet snapped to minor units — call RoundToMinorUnits for
// that). Fails with a ValidationError if scalar is zero.
func (m Money) DivScalar(scalar decimal.Decimal, mode RoundingMode) (Money, error) {
	if scalar.IsZero() {
		return Money{}, coreerr.Validation("division by zero")
	}
	var result decimal.Decimal
	switch mode {
	case RoundHalfUp:
		result = m.amount.DivRound(scalar, divScale)
	case RoundDown:
		q, _ := m.amount.QuoRem(scalar, divScale)
		result = q
	case RoundUp:
		q, r := m.amount.QuoRem(scalar, divScale)
		if !r.IsZero() {
			if q.IsNegative() {
				q = q.Sub(decimal.New(1, -divScale))
			} else {
				q = q.Add(decimal.New(1, -divScale))
			}
		}
		result = q
	case RoundHalfEven:
		fallthrough
	default:
		q, r := m.amount.QuoRem(scalar, divScale)
		unit := decimal.New(1, -divScale)
		c := r.Abs().Mul(decimal.NewFromInt(2)).Cmp(scalar.Abs().Mul(unit))
		if c > 0 || (c == 0 && q.Shift(divScale).BigInt().Bit(0) == 1) {
			if m.amount.Sign()*scalar.Sign() < 0 {
				q = q.Sub(unit)
			} else {
				q = q.Add(unit)
			}
		}
		result = q
	}
	return Money{amount: result, currency: m.currency}, nil
}

// IsZero, IsPositive, IsNegative report the sign of the amount.
func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Cmp compares m to other; -1, 0, 1 per decimal.Decimal.Cmp. Fails with a
// ValidationError if currencies differ.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether m and other have the same currency and amount.
func (m Money) Equal(other Money) bool {
	return m.currency.Code == other.currency.Code && m.amount.Equal(other.amount)
}

// RoundToMinorUnits snaps the amount to the currency's minor-unit precision
// using HALF_EVEN (banker's) rounding. Idempotent: rounding an
// already-rounded Money returns an equal Money.
func (m Money) RoundToMinorUnits() Money {
	return Money{amount: m.amount.RoundBank(m.currency.MinorUnits), currency: m.currency}
}

// String formats the amount fixed to the currency's minor-unit digits,
// e.g. "1000.00".
func (m Money) String() string {
	return m.amount.StringFixed(m.currency.MinorUnits)
}

// Negate returns -m.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}
