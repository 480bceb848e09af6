// Package portfolio defines the records a trading portfolio is made of:
// trades, capital targets and the portfolio document that owns them.
//
// The types here carry source data only. Anything derived from them, such as
// current capital or win rate, is computed on demand by the progress and
// stats packages and never stored.
package portfolio

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a trade. The only transition is
// StatusOpen to StatusClosed.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Trade is one position recorded in a portfolio ledger.
type Trade struct {
	ID        string
	AssetName string

	EntryPrice      decimal.Decimal
	TradeValue      decimal.Decimal
	TakeProfitPrice decimal.Decimal
	StopLossPrice   decimal.Decimal

	// TakeProfit and StopLoss are the currency amounts won or lost if the
	// respective price is hit. Both are positive magnitudes.
	TakeProfit decimal.Decimal
	StopLoss   decimal.Decimal

	Status Status
	PnL    decimal.Decimal

	// CapitalBeforeTrade is the portfolio capital when the trade was opened.
	CapitalBeforeTrade decimal.Decimal

	OpenDate  time.Time
	CloseDate time.Time
	Notes     string
}

// IsOpen reports whether the trade has not been closed yet.
func (t Trade) IsOpen() bool { return t.Status != StatusClosed }

// IsClosed reports whether the trade has been closed.
func (t Trade) IsClosed() bool { return t.Status == StatusClosed }

// Target is one rung of the capital ladder.
type Target struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

// Portfolio is the document persisted per user and portfolio.
type Portfolio struct {
	ID             string
	Name           string
	InitialCapital decimal.Decimal
	Currency       string
	Targets        []Target
	Trades         []Trade

	// Version counts local writes. It is bumped by the store on every
	// mutation and used to detect stale remote copies.
	Version   int64
	UpdatedAt time.Time
}

// Clone returns a deep copy so updaters can never alias the store's copy.
func (p Portfolio) Clone() Portfolio {
	p.Targets = slices.Clone(p.Targets)
	p.Trades = slices.Clone(p.Trades)
	return p
}

// Trade returns the trade with the given ID.
func (p Portfolio) Trade(id string) (Trade, bool) {
	i := p.TradeIndex(id)
	if i < 0 {
		return Trade{}, false
	}
	return p.Trades[i], true
}

// TradeIndex returns the position of the trade in the ledger, or -1.
func (p Portfolio) TradeIndex(id string) int {
	return slices.IndexFunc(p.Trades, func(t Trade) bool { return t.ID == id })
}

// ClosedTrades returns the closed subset of the ledger, in ledger order.
func (p Portfolio) ClosedTrades() []Trade {
	return Filter(p.Trades, StatusClosed)
}

// OpenTrades returns the open subset of the ledger, in ledger order.
func (p Portfolio) OpenTrades() []Trade {
	return Filter(p.Trades, StatusOpen)
}

// Filter returns the trades having the given status.
func Filter(trades []Trade, status Status) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Assets returns the distinct asset names of the ledger in first-seen order.
func (p Portfolio) Assets() []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range p.Trades {
		if !seen[t.AssetName] {
			seen[t.AssetName] = true
			out = append(out, t.AssetName)
		}
	}
	return out
}

// CommonAssets seeds asset suggestions before a ledger has history.
var CommonAssets = []string{"BTC", "ETH", "AAPL", "GOOGL", "TSLA", "AMZN", "NVDA"}

// SuggestedAssets merges CommonAssets with the assets already traded.
func (p Portfolio) SuggestedAssets() []string {
	out := slices.Clone(CommonAssets)
	for _, a := range p.Assets() {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}
