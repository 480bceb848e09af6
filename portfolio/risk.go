package portfolio

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Shares is the implied share count TradeValue / EntryPrice, or zero when
// the entry price is not positive.
func (t Trade) Shares() decimal.Decimal {
	if !t.EntryPrice.IsPositive() {
		return decimal.Zero
	}
	return t.TradeValue.Div(t.EntryPrice)
}

// PlannedAmounts computes the take-profit and stop-loss currency amounts
// for a position. Both are returned as positive magnitudes.
func PlannedAmounts(entry, value, takeProfitPrice, stopLossPrice decimal.Decimal) (takeProfit, stopLoss decimal.Decimal) {
	if !entry.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	shares := value.Div(entry)
	takeProfit = takeProfitPrice.Sub(entry).Mul(shares).Abs()
	stopLoss = entry.Sub(stopLossPrice).Mul(shares).Abs()
	return takeProfit, stopLoss
}

// RewardRisk is the planned reward over the planned risk. Zero when the
// stop-loss amount is zero.
func (t Trade) RewardRisk() float64 {
	if t.StopLoss.IsZero() {
		return 0
	}
	return t.TakeProfit.Div(t.StopLoss).InexactFloat64()
}

// PnLPercentOfValue is the realized P/L as a percentage of the position
// value, the per-trade figure shown next to each closed trade.
func (t Trade) PnLPercentOfValue() float64 {
	if !t.TradeValue.IsPositive() {
		return 0
	}
	return t.PnL.Div(t.TradeValue).Mul(hundred).InexactFloat64()
}

// PnLPercentOfCapital is the realized P/L as a percentage of the capital
// before the trade. Zero for open trades.
func (t Trade) PnLPercentOfCapital() float64 {
	if !t.IsClosed() || !t.CapitalBeforeTrade.IsPositive() {
		return 0
	}
	return t.PnL.Div(t.CapitalBeforeTrade).Mul(hundred).InexactFloat64()
}
