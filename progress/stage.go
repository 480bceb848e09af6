package progress

import (
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// Stage is the capital interval between the last achieved target (or the
// initial capital) and the next one.
type Stage struct {
	Percent float64
	Start   decimal.Decimal
	End     decimal.Decimal
}

// ProgressWithinStage locates capital inside the current stage.
//
// Percent resets to 0 when a rung is crossed and a new stage opens. A
// zero-length stage reports 100 when capital has reached a positive end.
func ProgressWithinStage(targets []portfolio.Target, initial, capital decimal.Decimal, active portfolio.Target, hasActive bool) Stage {
	start := initial
	if achieved := AchievedTargets(targets, capital); len(achieved) > 0 {
		start = achieved[len(achieved)-1].Amount
	}

	end := start
	if hasActive {
		end = active.Amount
	}

	st := Stage{Start: start, End: end}
	span := end.Sub(start)
	if !span.IsPositive() {
		if capital.GreaterThanOrEqual(end) && end.IsPositive() {
			st.Percent = 100
		}
		return st
	}

	pct := capital.Sub(start).Div(span).InexactFloat64() * 100
	st.Percent = clamp(pct, 0, 100)
	return st
}
