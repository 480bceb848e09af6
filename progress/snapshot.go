package progress

import (
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// Snapshot gathers everything the dashboard header shows for a portfolio.
type Snapshot struct {
	InitialCapital decimal.Decimal
	Capital        decimal.Decimal
	NetPnL         decimal.Decimal

	Target         portfolio.Target
	HasTarget      bool
	AmountToTarget decimal.Decimal

	Stage    Stage
	Estimate Estimate
}

// Take computes a Snapshot from the portfolio's ledger and ladder.
func Take(p portfolio.Portfolio) Snapshot {
	capital := CurrentCapital(p.InitialCapital, p.Trades)
	active, ok := ActiveTarget(p.Targets, capital)
	return Snapshot{
		InitialCapital: p.InitialCapital,
		Capital:        capital,
		NetPnL:         capital.Sub(p.InitialCapital),
		Target:         active,
		HasTarget:      ok,
		AmountToTarget: AmountToTarget(capital, active, ok),
		Stage:          ProgressWithinStage(p.Targets, p.InitialCapital, capital, active, ok),
		Estimate:       EstimateTradesToTarget(p.ClosedTrades(), capital, active, ok),
	}
}
