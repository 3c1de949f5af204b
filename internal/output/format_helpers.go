package output

import (
	"strconv"

	money "github.com/rpgo/retirement-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as grouped USD with cents.
func FormatCurrency(amount decimal.Decimal) string { return money.NewMoney(amount).Format() }

// FormatWholeCurrency formats a decimal as grouped USD without cents.
func FormatWholeCurrency(amount decimal.Decimal) string { return money.NewMoney(amount).FormatWhole() }

// FormatCompactCurrency abbreviates large amounts: "$1.25M".
func FormatCompactCurrency(amount decimal.Decimal) string { return money.NewMoney(amount).Compact() }

// FormatRate formats a fraction as a percentage with one decimal: 0.853 -> "85.3%".
func FormatRate(rate decimal.Decimal) string { return money.FormatPercent(rate, 1) }

// FormatPercentage formats a fraction as a percentage with 2 decimals.
func FormatPercentage(rate decimal.Decimal) string { return money.FormatPercent(rate, 2) }

func fixed(d decimal.Decimal) string { return d.StringFixed(2) }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalRate(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.StringFixed(6)
}
