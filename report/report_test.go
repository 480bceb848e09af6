package report

import (
	"testing"
	"time"

	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	opened = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	closed = time.Date(2024, 7, 3, 16, 0, 0, 0, time.UTC)
)

func input(asset string) portfolio.TradeInput {
	return portfolio.TradeInput{
		AssetName:       asset,
		EntryPrice:      d("50"),
		TradeValue:      d("1000"),
		TakeProfitPrice: d("60"),
		StopLossPrice:   d("45"),
	}
}

// growth has capital 1250 after one winning BTC trade, a reached 1200 rung
// and an open ETH position.
func growth(t *testing.T) portfolio.Portfolio {
	t.Helper()
	p, err := ledger.NewPortfolio("Growth", d("1000"), d("2000"), "USD", opened)
	require.NoError(t, err)
	p, err = ledger.Chain(
		ledger.AddTarget("First", d("1200")),
		ledger.OpenTrade(input("btc"), opened),
	)(p)
	require.NoError(t, err)
	p, err = ledger.Chain(
		ledger.CloseTrade(p.Trades[0].ID, d("250"), closed),
		ledger.OpenTrade(input("eth"), closed),
	)(p)
	require.NoError(t, err)
	return p
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	out := Dashboard(growth(t))
	assert.Contains(t, out, "# Growth")
	assert.Contains(t, out, "$1,250.00")
	assert.Contains(t, out, "+$250.00")
	assert.Contains(t, out, "Initial Target: $2,000.00")
	assert.Contains(t, out, "stage $1,200.00 to $2,000.00")
	assert.Contains(t, out, "$750.00 to go.")
	assert.Contains(t, out, "Close 4 more trade(s) for an estimate.")
}

func TestDashboardWithoutTargetsLeft(t *testing.T) {
	t.Parallel()

	p := growth(t)
	p, err := ledger.ReplaceTargets([]portfolio.Target{{Name: "Small", Amount: d("1100")}})(p)
	require.NoError(t, err)

	out := Dashboard(p)
	assert.Contains(t, out, "All targets reached.")
	assert.NotContains(t, out, "to go.")
}

func TestEstimateText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap progress.Snapshot
		want string
	}{
		{
			name: "estimated",
			snap: progress.Snapshot{
				Target:   portfolio.Target{Name: "Moon"},
				Estimate: progress.Estimate{Outcome: progress.Estimated, Trades: 10, AvgGrowthRate: 0.05},
			},
			want: "About 10 trade(s) to reach Moon at +5.00% per trade.",
		},
		{
			name: "non-positive",
			snap: progress.Snapshot{Estimate: progress.Estimate{Outcome: progress.NonPositiveRate, AvgGrowthRate: -0.01}},
			want: "Average growth per trade is -1.00%; the target is out of reach at this rate.",
		},
		{
			name: "insufficient",
			snap: progress.Snapshot{Estimate: progress.Estimate{Outcome: progress.InsufficientData, SampleSize: 2}},
			want: "Close 3 more trade(s) for an estimate.",
		},
		{
			name: "achieved",
			snap: progress.Snapshot{Estimate: progress.Estimate{Outcome: progress.Achieved}},
			want: "All targets reached.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EstimateText(tt.snap))
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	out := Stats(growth(t), time.UTC)
	assert.Contains(t, out, "# Growth statistics")
	assert.Contains(t, out, "2024-07")
	assert.Contains(t, out, "BTC")
	assert.NotContains(t, out, "ETH")
	assert.Contains(t, out, "Capital: $1,000.00 initial + $250.00 profit = $1,250.00")
	assert.Contains(t, out, "BTC: $250.00 (100.00%)")
}

func TestStatsEmpty(t *testing.T) {
	t.Parallel()

	p, err := ledger.NewPortfolio("Fresh", d("500"), d("1000"), "USD", opened)
	require.NoError(t, err)

	out := Stats(p, time.UTC)
	assert.NotContains(t, out, "## Monthly")
	assert.NotContains(t, out, "## Assets")
	assert.NotContains(t, out, "## Profit share")
}

func TestTrades(t *testing.T) {
	t.Parallel()

	p := growth(t)
	out := Trades(p)
	assert.Contains(t, out, "Trades (2)")
	assert.Contains(t, out, p.Trades[0].ID)
	assert.Contains(t, out, "+$250.00 (+25.00%)")
	assert.Contains(t, out, "open")

	p.Trades = nil
	assert.Contains(t, Trades(p), "No trades yet.")
}

func TestTargets(t *testing.T) {
	t.Parallel()

	out := Targets(growth(t))
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "reached")
	assert.Contains(t, out, "active")
}

func TestPortfolios(t *testing.T) {
	t.Parallel()

	out := Portfolios([]portfolio.Portfolio{growth(t)})
	assert.Contains(t, out, "Growth")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "+25.00%")

	assert.Contains(t, Portfolios(nil), "No portfolios yet.")
}

func TestBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#####-----", Bar(50, 10))
	assert.Equal(t, "----------", Bar(-5, 10))
	assert.Equal(t, "##########", Bar(140, 10))
	assert.Equal(t, "", Bar(50, 0))
}

func TestRenderPlain(t *testing.T) {
	t.Parallel()

	out, err := Render("# Title", 80, true)
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)

	out, err = Render("# Title\n\nsome text", 80, false)
	require.NoError(t, err)
	assert.Contains(t, out, "some text")
}
