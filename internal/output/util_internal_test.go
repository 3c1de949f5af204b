//go:build unit

package output

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIntToString(t *testing.T) {
	if got, want := intToString(42), "42"; got != want {
		t.Errorf("intToString(42) = %q, want %q", got, want)
	}
}

func TestBoolToString(t *testing.T) {
	if got, want := boolToString(true), "true"; got != want {
		t.Errorf("boolToString(true) = %q, want %q", got, want)
	}
	if got, want := boolToString(false), "false"; got != want {
		t.Errorf("boolToString(false) = %q, want %q", got, want)
	}
}

func TestOptionalValues(t *testing.T) {
	if got := optionalInt(nil); got != "" {
		t.Errorf("optionalInt(nil) = %q, want empty", got)
	}
	age := 88
	if got := optionalInt(&age); got != "88" {
		t.Errorf("optionalInt(88) = %q", got)
	}
	if got := optionalRate(nil); got != "" {
		t.Errorf("optionalRate(nil) = %q, want empty", got)
	}
	rate := decimal.NewFromFloat(0.9125)
	if got := optionalRate(&rate); got != "0.912500" {
		t.Errorf("optionalRate = %q", got)
	}
}

func TestSigned(t *testing.T) {
	if got := signed(decimal.NewFromFloat(0.01), -1); got != "+0.01" {
		t.Errorf("signed = %q", got)
	}
	if got := signed(decimal.NewFromInt(-2), -1); got != "-2" {
		t.Errorf("signed = %q", got)
	}
	if got := signedCurrency(decimal.NewFromInt(1500)); got != "+$1,500" {
		t.Errorf("signedCurrency = %q", got)
	}
}
