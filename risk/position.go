// Package risk sizes new trades from portfolio capital and checks a trade
// plan against a personal risk policy before it is opened.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoStopDistance = errors.New("entry and stop loss must differ")

type Inputs struct {
	Capital   decimal.Decimal
	RiskPct   float64 // 1 means 1% of capital
	Entry     decimal.Decimal
	StopPrice decimal.Decimal
}

type Result struct {
	TradeValue decimal.Decimal
	Shares     decimal.Decimal
	RiskAmount decimal.Decimal
}

// Calculate returns the position whose loss at the stop equals RiskPct of
// capital. The value is rounded down to cents so the loss never exceeds it.
func Calculate(in Inputs) (Result, error) {
	dist := in.Entry.Sub(in.StopPrice).Abs()
	if dist.IsZero() {
		return Result{}, ErrNoStopDistance
	}

	riskAmt := in.Capital.Mul(decimal.NewFromFloat(in.RiskPct)).Div(decimal.NewFromInt(100))
	shares := riskAmt.Div(dist)
	value := shares.Mul(in.Entry).RoundDown(2)

	return Result{
		TradeValue: value,
		Shares:     shares,
		RiskAmount: riskAmt.Round(2),
	}, nil
}
