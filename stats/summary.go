// Package stats aggregates closed trades into the figures shown on the
// dashboard and the analysis views. Every function accepts any trade list,
// ignores open trades and returns zero values for empty input.
package stats

import (
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
)

// Summary is the overall result of a set of closed trades.
type Summary struct {
	Trades     int
	Wins       int
	Losses     int
	Breakevens int

	// WinRate is wins over closed trades, as a percentage.
	WinRate float64

	AvgWin      decimal.Decimal
	AvgLoss     decimal.Decimal // positive magnitude
	NetProfit   decimal.Decimal
	GrossProfit decimal.Decimal
	GrossLoss   decimal.Decimal // positive magnitude

	// ProfitFactor = GrossProfit / GrossLoss, 0 when nothing was lost.
	ProfitFactor  float64
	AvgGrowthRate float64
}

// Summarize computes a Summary over the closed trades in trades.
func Summarize(trades []portfolio.Trade) Summary {
	closed := portfolio.Filter(trades, portfolio.StatusClosed)

	var s Summary
	for _, t := range closed {
		s.Trades++
		s.NetProfit = s.NetProfit.Add(t.PnL)
		switch t.PnL.Sign() {
		case 1:
			s.Wins++
			s.GrossProfit = s.GrossProfit.Add(t.PnL)
		case -1:
			s.Losses++
			s.GrossLoss = s.GrossLoss.Add(t.PnL.Abs())
		default:
			s.Breakevens++
		}
	}

	s.WinRate = percent(s.Wins, s.Trades)
	s.AvgWin = average(s.GrossProfit, s.Wins)
	s.AvgLoss = average(s.GrossLoss, s.Losses)
	if s.GrossLoss.IsPositive() {
		s.ProfitFactor = s.GrossProfit.Div(s.GrossLoss).InexactFloat64()
	}
	s.AvgGrowthRate = progress.AvgGrowthRate(closed)
	return s
}

// PortfolioWinRate is the win rate of a portfolio's closed trades.
func PortfolioWinRate(p portfolio.Portfolio) float64 {
	return Summarize(p.Trades).WinRate
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}
