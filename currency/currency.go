// Package currency turns decimal amounts into display strings for a
// portfolio's ISO 4217 currency.
package currency

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Supported reports whether code is a currency go-money knows how to
// format.
func Supported(code string) bool {
	return money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))) != nil
}

// Format renders amount in the currency's minor-unit precision, e.g.
// "$1,234.50". Unknown codes render as "1234.50 XYZ".
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), code)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// Signed is Format with an explicit "+" on positive amounts.
func Signed(amount decimal.Decimal, code string) string {
	s := Format(amount, code)
	if amount.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}

// Percent renders a percentage with two decimals.
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// SignedPercent renders a percentage with an explicit sign.
func SignedPercent(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}
