package stats

import (
	"slices"
	"strings"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// Asset is the closed-trade performance of one asset.
type Asset struct {
	Name    string
	Trades  int
	Wins    int
	Losses  int
	WinRate float64
	NetPnL  decimal.Decimal
	AvgWin  decimal.Decimal
	AvgLoss decimal.Decimal // positive magnitude
}

// ByAsset groups closed trades per asset, most profitable first. Equal
// net P/L is ordered by name.
func ByAsset(trades []portfolio.Trade) []Asset {
	type acc struct {
		Asset
		profit, loss decimal.Decimal
	}
	var order []string
	groups := map[string]*acc{}
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		g, ok := groups[t.AssetName]
		if !ok {
			g = &acc{Asset: Asset{Name: t.AssetName}}
			groups[t.AssetName] = g
			order = append(order, t.AssetName)
		}
		g.Trades++
		g.NetPnL = g.NetPnL.Add(t.PnL)
		switch t.PnL.Sign() {
		case 1:
			g.Wins++
			g.profit = g.profit.Add(t.PnL)
		case -1:
			g.Losses++
			g.loss = g.loss.Add(t.PnL.Abs())
		}
	}

	out := make([]Asset, 0, len(order))
	for _, name := range order {
		g := groups[name]
		g.WinRate = percent(g.Wins, g.Trades)
		g.AvgWin = average(g.profit, g.Wins)
		g.AvgLoss = average(g.loss, g.Losses)
		out = append(out, g.Asset)
	}
	slices.SortFunc(out, func(a, b Asset) int {
		if c := b.NetPnL.Cmp(a.NetPnL); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Share is one asset's slice of the total realized profit.
type Share struct {
	Name    string
	Profit  decimal.Decimal
	Percent float64
}

// ProfitShare splits the profit of winning trades by asset, largest first.
// Losing trades are ignored. It is empty when nothing was won.
func ProfitShare(trades []portfolio.Trade) []Share {
	var out []Share
	total := decimal.Zero
	for _, t := range trades {
		if !t.IsClosed() || !t.PnL.IsPositive() {
			continue
		}
		total = total.Add(t.PnL)
		i := slices.IndexFunc(out, func(s Share) bool { return s.Name == t.AssetName })
		if i < 0 {
			out = append(out, Share{Name: t.AssetName})
			i = len(out) - 1
		}
		out[i].Profit = out[i].Profit.Add(t.PnL)
	}
	if !total.IsPositive() {
		return nil
	}

	for i := range out {
		out[i].Percent = out[i].Profit.Div(total).InexactFloat64() * 100
	}
	slices.SortStableFunc(out, func(a, b Share) int { return b.Profit.Cmp(a.Profit) })
	return out
}
