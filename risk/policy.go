package risk

import (
	"fmt"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
)

// Policy holds personal limits. Zero fields are not checked.
type Policy struct {
	DefaultRiskPct float64 `json:"default_risk_pct" yaml:"default_risk_pct"`
	MaxRiskPct     float64 `json:"max_risk_pct" yaml:"max_risk_pct"`
	MinRR          float64 `json:"min_rr" yaml:"min_rr"`
	MaxOpenTrades  int     `json:"max_open_trades" yaml:"max_open_trades"`
}

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	PlannedRisk    decimal.Decimal
	PlannedRiskPct float64
	PlannedRR      float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks a validated trade plan against p's current capital and
// open positions.
func Evaluate(pol Policy, in portfolio.TradeInput, p portfolio.Portfolio) Decision {
	d := Decision{Allowed: true}

	takeProfit, stopLoss := portfolio.PlannedAmounts(in.EntryPrice, in.TradeValue, in.TakeProfitPrice, in.StopLossPrice)
	d.PlannedRisk = stopLoss
	if stopLoss.IsPositive() {
		d.PlannedRR = takeProfit.Div(stopLoss).InexactFloat64()
	}

	capital := progress.Capital(p)
	if !capital.IsPositive() {
		d.add("NO_CAPITAL", "portfolio capital is not positive")
		return d
	}
	d.PlannedRiskPct = stopLoss.Div(capital).Mul(decimal.NewFromInt(100)).InexactFloat64()

	if pol.MaxRiskPct > 0 && d.PlannedRiskPct > pol.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%", d.PlannedRiskPct, pol.MaxRiskPct))
	} else if pol.DefaultRiskPct > 0 && d.PlannedRiskPct > pol.DefaultRiskPct {
		d.add("RISK_OVER_DEFAULT",
			fmt.Sprintf("planned risk %.2f%% exceeds default %.2f%%", d.PlannedRiskPct, pol.DefaultRiskPct))
	}
	if pol.MinRR > 0 && d.PlannedRR < pol.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", d.PlannedRR, pol.MinRR))
	}
	if open := len(p.OpenTrades()); pol.MaxOpenTrades > 0 && open >= pol.MaxOpenTrades {
		d.add("TOO_MANY_OPEN_TRADES",
			fmt.Sprintf("open trades %d >= max %d", open, pol.MaxOpenTrades))
	}

	return d
}
