package money

import "github.com/nexum-core/ledger/internal/coreerr"

// Currency is a closed ISO 4217 entry: a code plus the number of minor-unit
// decimal digits (e.g. USD=2, JPY=0, BHD=3). Unknown codes are rejected at
// parse time rather than silently defaulted, per the enum-as-string design
// note in spec.md §9.
type Currency struct {
	Code       string
	MinorUnits int32
}

func (c Currency) String() string { return c.Code }

// registry is the closed set of currencies this core knows about. Real
// deployments would load this from a reference-data table; for the core it
// is a fixed, auditable set covering the currencies exercised in tests and
// the scenarios in spec.md §8.
var registry = map[string]Currency{
	"USD": {Code: "USD", MinorUnits: 2},
	"EUR": {Code: "EUR", MinorUnits: 2},
	"GBP": {Code: "GBP", MinorUnits: 2},
	"JPY": {Code: "JPY", MinorUnits: 0},
	"BHD": {Code: "BHD", MinorUnits: 3},
	"CHF": {Code: "CHF", MinorUnits: 2},
}

// LookupCurrency resolves a currency code against the closed registry.
// Unknown codes are a ValidationError — they are never silently accepted.
func LookupCurrency(code string) (Currency, error) {
	c, ok := registry[code]
	if !ok {
		return Currency{}, coreerr.Validation("unknown currency code %q", code)
	}
	return c, nil
}

// MustLookupCurrency panics on an unknown code; reserved for package-level
// constants and tests, never for request-path input.
func MustLookupCurrency(code string) Currency {
	c, err := LookupCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}
