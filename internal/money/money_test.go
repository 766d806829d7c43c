package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustUSD(t *testing.T, s string) Money {
	t.Helper()
	m, err := NewFromString(s, "USD")
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", s, err)
	}
	return m
}

func TestAddSameCurrency(t *testing.T) {
	a := mustUSD(t, "10.50")
	b := mustUSD(t, "5.25")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.String() != "15.75" {
		t.Fatalf("expected 15.75, got %s", sum.String())
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	usd := mustUSD(t, "10.00")
	eur, _ := NewFromString("10.00", "EUR")
	if _, err := usd.Add(eur); err == nil {
		t.Fatalf("expected currency mismatch error")
	}
}

func TestDivScalarByZero(t *testing.T) {
	usd := mustUSD(t, "10.00")
	if _, err := usd.DivScalar(decimal.Zero, RoundHalfEven); err == nil {
		t.Fatalf("expected division by zero error")
	}
}

func TestRoundToMinorUnitsHalfEven(t *testing.T) {
	// 10.005 rounds to 10.00 under HALF_EVEN (round to even digit 0).
	m, err := NewFromString("10.005", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rounded := m.RoundToMinorUnits()
	if rounded.String() != "10.00" {
		t.Fatalf("expected 10.00, got %s", rounded.String())
	}

	// 10.015 rounds to 10.02 under HALF_EVEN (round to even digit 2).
	m2, _ := NewFromString("10.015", "USD")
	rounded2 := m2.RoundToMinorUnits()
	if rounded2.String() != "10.02" {
		t.Fatalf("expected 10.02, got %s", rounded2.String())
	}
}

func TestRoundToMinorUnitsIdempotent(t *testing.T) {
	m := mustUSD(t, "10.005")
	once := m.RoundToMinorUnits()
	twice := once.RoundToMinorUnits()
	if !once.Equal(twice) {
		t.Fatalf("expected rounding to be idempotent: %s vs %s", once, twice)
	}
}

func TestZeroCurrencyPreserved(t *testing.T) {
	z, err := Zero("JPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !z.IsZero() {
		t.Fatalf("expected zero value")
	}
	if z.CurrencyCode() != "JPY" {
		t.Fatalf("expected JPY, got %s", z.CurrencyCode())
	}
}

func TestUnknownCurrencyRejected(t *testing.T) {
	if _, err := NewFromString("1.00", "XXX"); err == nil {
		t.Fatalf("expected unknown currency to be rejected")
	}
}

func TestRoundTripSerialization(t *testing.T) {
	m := mustUSD(t, "1234.56")
	serialized := m.String()
	roundTripped, err := NewFromString(serialized, m.CurrencyCode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(roundTripped) {
		t.Fatalf("expected round-trip equality: %s vs %s", m, roundTripped)
	}
}
