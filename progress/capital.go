// Package progress derives a portfolio's capital and its position on the
// target ladder from the trade ledger.
//
// Every function is pure: inputs are passed explicitly and nothing is
// cached, so callers recompute on each read.
package progress

import (
	"cmp"
	"slices"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// CurrentCapital is the initial capital plus the P/L of every closed trade.
// The sum is exact, so folding order does not matter.
func CurrentCapital(initial decimal.Decimal, trades []portfolio.Trade) decimal.Decimal {
	capital := initial
	for _, t := range trades {
		if t.IsClosed() {
			capital = capital.Add(t.PnL)
		}
	}
	return capital
}

// Capital is CurrentCapital for a whole portfolio.
func Capital(p portfolio.Portfolio) decimal.Decimal {
	return CurrentCapital(p.InitialCapital, p.Trades)
}

// SortTargets returns the ladder ascending by amount. Equal amounts keep
// their insertion order.
func SortTargets(targets []portfolio.Target) []portfolio.Target {
	out := slices.Clone(targets)
	slices.SortStableFunc(out, func(a, b portfolio.Target) int {
		return a.Amount.Cmp(b.Amount)
	})
	return out
}

// ActiveTarget returns the first target above capital. Once every rung is
// reached the largest one stays active. ok is false for an empty ladder.
func ActiveTarget(targets []portfolio.Target, capital decimal.Decimal) (active portfolio.Target, ok bool) {
	sorted := SortTargets(targets)
	if len(sorted) == 0 {
		return portfolio.Target{}, false
	}
	for _, t := range sorted {
		if t.Amount.GreaterThan(capital) {
			return t, true
		}
	}
	return sorted[len(sorted)-1], true
}

// AmountToTarget is what is left to earn before the active target. It is
// negative once the final rung has been passed.
func AmountToTarget(capital decimal.Decimal, active portfolio.Target, ok bool) decimal.Decimal {
	if !ok {
		return decimal.Zero
	}
	return active.Amount.Sub(capital)
}

// AchievedTargets returns the targets already reached, ascending.
func AchievedTargets(targets []portfolio.Target, capital decimal.Decimal) []portfolio.Target {
	var out []portfolio.Target
	for _, t := range SortTargets(targets) {
		if t.Amount.LessThanOrEqual(capital) {
			out = append(out, t)
		}
	}
	return out
}

func clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
