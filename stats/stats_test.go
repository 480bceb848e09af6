package stats

import (
	"testing"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 12, 0, 0, 0, time.UTC) }

func trade(id, asset, pnl, before string, closed time.Time) portfolio.Trade {
	return portfolio.Trade{
		ID:                 id,
		AssetName:          asset,
		Status:             portfolio.StatusClosed,
		PnL:                d(pnl),
		CapitalBeforeTrade: d(before),
		CloseDate:          closed,
	}
}

func sample() []portfolio.Trade {
	return []portfolio.Trade{
		trade("1", "BTC", "100", "1000", day(2024, 5, 3)),
		trade("2", "ETH", "-50", "1100", day(2024, 5, 20)),
		trade("3", "BTC", "200", "1050", day(2024, 6, 1)),
		trade("4", "AAPL", "0", "1250", day(2024, 6, 2)),
		trade("5", "ETH", "-30", "1250", day(2024, 7, 9)),
		{ID: "6", AssetName: "TSLA", Status: portfolio.StatusOpen, PnL: d("500")},
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range [][]portfolio.Trade{nil, {{Status: portfolio.StatusOpen, PnL: d("10")}}} {
		s := Summarize(in)
		assert.Zero(t, s.Trades)
		assert.Zero(t, s.WinRate)
		assert.True(t, s.AvgWin.IsZero())
		assert.True(t, s.AvgLoss.IsZero())
		assert.True(t, s.NetProfit.IsZero())
		assert.Zero(t, s.ProfitFactor)
		assert.Zero(t, s.AvgGrowthRate)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sample())
	assert.Equal(t, 5, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.Breakevens)
	assert.InDelta(t, 40.0, s.WinRate, 1e-9)
	assert.True(t, s.AvgWin.Equal(d("150")), s.AvgWin.String())
	assert.True(t, s.AvgLoss.Equal(d("40")), s.AvgLoss.String())
	assert.True(t, s.NetProfit.Equal(d("220")))
	assert.True(t, s.GrossProfit.Equal(d("300")))
	assert.True(t, s.GrossLoss.Equal(d("80")))
	assert.InDelta(t, 3.75, s.ProfitFactor, 1e-9)

	want := (100.0/1000 - 50.0/1100 + 200.0/1050 + 0 - 30.0/1250) / 5
	assert.InDelta(t, want, s.AvgGrowthRate, 1e-9)
}

func TestProfitFactorWithoutLosses(t *testing.T) {
	t.Parallel()

	s := Summarize([]portfolio.Trade{trade("1", "BTC", "10", "100", day(2024, 1, 1))})
	assert.Zero(t, s.ProfitFactor)
	assert.InDelta(t, 100.0, s.WinRate, 1e-9)
}

func TestMonthly(t *testing.T) {
	t.Parallel()

	trades := append(sample(), trade("7", "NVDA", "25", "1000", time.Time{}))
	months := Monthly(trades, time.UTC)

	require.Len(t, months, 3)
	assert.Equal(t, []string{"2024-07", "2024-06", "2024-05"},
		[]string{months[0].Label(), months[1].Label(), months[2].Label()})

	may := months[2]
	assert.Equal(t, 2, may.Trades)
	assert.Equal(t, 1, may.Wins)
	assert.Equal(t, 1, may.Losses)
	assert.True(t, may.NetPnL.Equal(d("50")))

	june := months[1]
	assert.Equal(t, 1, june.Wins)
	assert.Equal(t, 0, june.Losses)
	assert.Equal(t, 2, june.Trades)

	assert.Empty(t, Monthly(nil, time.UTC))
}

func TestMonthlyUsesLocation(t *testing.T) {
	t.Parallel()

	// 23:30 UTC on May 31 is already June in Tokyo
	closed := time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)
	trades := []portfolio.Trade{trade("1", "BTC", "10", "100", closed)}

	assert.Equal(t, time.May, Monthly(trades, time.UTC)[0].Month)

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, time.June, Monthly(trades, tokyo)[0].Month)
}

func TestByAsset(t *testing.T) {
	t.Parallel()

	assets := ByAsset(sample())
	require.Len(t, assets, 3)

	names := []string{assets[0].Name, assets[1].Name, assets[2].Name}
	assert.Equal(t, []string{"BTC", "AAPL", "ETH"}, names)

	btc := assets[0]
	assert.Equal(t, 2, btc.Trades)
	assert.InDelta(t, 100.0, btc.WinRate, 1e-9)
	assert.True(t, btc.NetPnL.Equal(d("300")))
	assert.True(t, btc.AvgWin.Equal(d("150")))
	assert.True(t, btc.AvgLoss.IsZero())

	eth := assets[2]
	assert.Equal(t, 2, eth.Losses)
	assert.True(t, eth.AvgLoss.Equal(d("40")))
	assert.Zero(t, eth.WinRate)

	assert.Empty(t, ByAsset(nil))
}

func TestByAssetTiesByName(t *testing.T) {
	t.Parallel()

	assets := ByAsset([]portfolio.Trade{
		trade("1", "ZZZ", "10", "100", day(2024, 1, 1)),
		trade("2", "AAA", "10", "100", day(2024, 1, 2)),
	})
	assert.Equal(t, "AAA", assets[0].Name)
	assert.Equal(t, "ZZZ", assets[1].Name)
}

func TestProfitShare(t *testing.T) {
	t.Parallel()

	trades := append(sample(), trade("8", "NVDA", "100", "1000", day(2024, 8, 1)))
	shares := ProfitShare(trades)

	require.Len(t, shares, 2)
	assert.Equal(t, "BTC", shares[0].Name)
	assert.True(t, shares[0].Profit.Equal(d("300")))
	assert.InDelta(t, 75.0, shares[0].Percent, 1e-9)
	assert.InDelta(t, 25.0, shares[1].Percent, 1e-9)

	assert.Empty(t, ProfitShare([]portfolio.Trade{trade("1", "X", "-5", "100", day(2024, 1, 1))}))
}

func TestEquityCurve(t *testing.T) {
	t.Parallel()

	trades := sample()
	// ledger order differs from close order
	trades[0], trades[2] = trades[2], trades[0]

	curve := EquityCurve(d("1000"), trades)
	require.Len(t, curve, 6)
	assert.True(t, curve[0].Time.IsZero())
	assert.True(t, curve[0].Capital.Equal(d("1000")))

	var got []string
	for _, p := range curve[1:] {
		got = append(got, p.Capital.String())
	}
	assert.Equal(t, []string{"1100", "1050", "1250", "1250", "1220"}, got)

	assert.InDelta(t, 50.0/1100*100, MaxDrawdownPct(curve), 1e-9)

	flat := EquityCurve(d("1000"), nil)
	require.Len(t, flat, 1)
	assert.Zero(t, MaxDrawdownPct(flat))
}

func TestCapitalSplit(t *testing.T) {
	t.Parallel()

	up := CapitalSplit(d("1000"), d("1250"))
	assert.True(t, up.InProfit)
	assert.True(t, up.Base.Equal(d("1000")))
	assert.True(t, up.Delta.Equal(d("250")))
	assert.True(t, up.Total.Equal(d("1250")))

	down := CapitalSplit(d("1000"), d("700"))
	assert.False(t, down.InProfit)
	assert.True(t, down.Base.Equal(d("700")))
	assert.True(t, down.Delta.Equal(d("300")))
	assert.True(t, down.Total.Equal(d("1000")))

	wiped := CapitalSplit(d("1000"), d("-200"))
	assert.True(t, wiped.Base.IsZero())
	assert.True(t, wiped.Delta.Equal(d("1200")))
}

func TestOverview(t *testing.T) {
	t.Parallel()

	usd1 := portfolio.Portfolio{Currency: "USD", InitialCapital: d("1000"), Trades: sample()}
	usd2 := portfolio.Portfolio{Currency: "USD", InitialCapital: d("500")}
	eur := portfolio.Portfolio{Currency: "EUR", InitialCapital: d("2000"),
		Trades: []portfolio.Trade{trade("1", "SAP", "-100", "2000", day(2024, 1, 1))}}

	got := Overview([]portfolio.Portfolio{usd1, eur, usd2})
	require.Len(t, got, 2)

	assert.Equal(t, "EUR", got[0].Currency)
	assert.True(t, got[0].NetPnL.Equal(d("-100")))
	assert.InDelta(t, -5.0, got[0].PnLPercent, 1e-9)

	usd := got[1]
	assert.Equal(t, 2, usd.Portfolios)
	assert.Equal(t, 5, usd.ClosedTrades)
	assert.True(t, usd.InitialCapital.Equal(d("1500")))
	assert.True(t, usd.CurrentCapital.Equal(d("1720")))
	assert.True(t, usd.NetPnL.Equal(d("220")))

	assert.Empty(t, Overview(nil))
}

func TestPortfolioWinRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 40.0, PortfolioWinRate(portfolio.Portfolio{Trades: sample()}), 1e-9)
	assert.Zero(t, PortfolioWinRate(portfolio.Portfolio{}))
}
