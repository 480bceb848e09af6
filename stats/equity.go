package stats

import (
	"slices"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// Point is the capital after a closed trade. The first point of a curve
// has a zero Time and holds the initial capital.
type Point struct {
	Time    time.Time
	TradeID string
	Capital decimal.Decimal
}

// EquityCurve replays closed trades in close-date order on top of the
// initial capital.
func EquityCurve(initial decimal.Decimal, trades []portfolio.Trade) []Point {
	closed := portfolio.Filter(trades, portfolio.StatusClosed)
	slices.SortStableFunc(closed, func(a, b portfolio.Trade) int {
		return a.CloseDate.Compare(b.CloseDate)
	})

	out := make([]Point, 0, len(closed)+1)
	out = append(out, Point{Capital: initial})
	capital := initial
	for _, t := range closed {
		capital = capital.Add(t.PnL)
		out = append(out, Point{Time: t.CloseDate, TradeID: t.ID, Capital: capital})
	}
	return out
}

// MaxDrawdownPct is the deepest peak-to-trough fall along the curve, as a
// percentage of the peak.
func MaxDrawdownPct(curve []Point) float64 {
	var worst float64
	peak := decimal.Zero
	for _, p := range curve {
		if p.Capital.GreaterThan(peak) {
			peak = p.Capital
			continue
		}
		if !peak.IsPositive() {
			continue
		}
		dd := peak.Sub(p.Capital).Div(peak).InexactFloat64() * 100
		worst = max(worst, dd)
	}
	return worst
}

// Split divides capital into two parts for a pie view: the initial capital
// and the net profit when in profit, or what remains and the loss when not.
type Split struct {
	InProfit bool
	Base     decimal.Decimal
	Delta    decimal.Decimal
	Total    decimal.Decimal
}

// CapitalSplit builds the Split for a portfolio's initial and current
// capital. Remaining capital never goes below zero.
func CapitalSplit(initial, current decimal.Decimal) Split {
	net := current.Sub(initial)
	if !net.IsNegative() {
		return Split{InProfit: true, Base: initial, Delta: net, Total: current}
	}
	return Split{
		Base:  decimal.Max(current, decimal.Zero),
		Delta: net.Abs(),
		Total: initial,
	}
}
