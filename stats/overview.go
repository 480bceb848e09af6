package stats

import (
	"slices"
	"strings"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
)

// CurrencyTotals adds up every portfolio held in one currency. Amounts in
// different currencies are never mixed.
type CurrencyTotals struct {
	Currency       string
	Portfolios     int
	InitialCapital decimal.Decimal
	CurrentCapital decimal.Decimal
	ClosedTrades   int
	NetPnL         decimal.Decimal
	PnLPercent     float64
}

// Overview groups portfolios by currency, sorted by currency code.
func Overview(portfolios []portfolio.Portfolio) []CurrencyTotals {
	var out []CurrencyTotals
	for _, p := range portfolios {
		i := slices.IndexFunc(out, func(c CurrencyTotals) bool { return c.Currency == p.Currency })
		if i < 0 {
			out = append(out, CurrencyTotals{Currency: p.Currency})
			i = len(out) - 1
		}
		c := &out[i]
		c.Portfolios++
		c.InitialCapital = c.InitialCapital.Add(p.InitialCapital)
		c.CurrentCapital = c.CurrentCapital.Add(progress.Capital(p))
		c.ClosedTrades += len(p.ClosedTrades())
	}

	for i := range out {
		c := &out[i]
		c.NetPnL = c.CurrentCapital.Sub(c.InitialCapital)
		if c.InitialCapital.IsPositive() {
			c.PnLPercent = c.NetPnL.Div(c.InitialCapital).InexactFloat64() * 100
		}
	}
	slices.SortFunc(out, func(a, b CurrencyTotals) int { return strings.Compare(a.Currency, b.Currency) })
	return out
}
