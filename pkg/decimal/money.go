package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// Money is a currency amount displayed to the cent.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal amount.
func NewMoney(d decimal.Decimal) Money {
	return Money{d}
}

// Format renders the amount as "$1,234,567.89", with a leading minus for debts.
func (m Money) Format() string {
	return formatGrouped(m.Decimal, 2)
}

// FormatWhole renders the amount without cents, as "$1,234,568".
func (m Money) FormatWhole() string {
	return formatGrouped(m.Decimal, 0)
}

// Compact renders large amounts with a suffix: "$1.25M", "$310.0K".
func (m Money) Compact() string {
	abs := m.Decimal.Abs()
	sign := ""
	if m.Decimal.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(billion):
		return sign + "$" + abs.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return sign + "$" + abs.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return sign + "$" + abs.Div(thousand).StringFixed(1) + "K"
	default:
		return sign + "$" + abs.StringFixed(0)
	}
}

func formatGrouped(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if d.Round(places).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

// FormatPercent renders a fraction as a percentage: 0.0425 -> "4.25%".
func FormatPercent(rate decimal.Decimal, places int32) string {
	return rate.Mul(hundred).StringFixed(places) + "%"
}
