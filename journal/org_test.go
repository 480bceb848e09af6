package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	trade := samplePortfolio("p1").Trades[0]
	trade.ID = "01J1ZK3Q8W0000000000000000"

	result := FormatTradeOrg(trade)

	// Check heading
	assert.Contains(t, result, "** Trade: BTC (01J1ZK3Q)\n")

	// Check properties drawer
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01J1ZK3Q8W0000000000000000")
	assert.Contains(t, result, ":ASSET: BTC")
	assert.Contains(t, result, ":STATUS: closed")
	assert.Contains(t, result, ":ENTRY_PRICE: 50")
	assert.Contains(t, result, ":SHARES: 20.0000")
	assert.Contains(t, result, ":TAKE_PROFIT: 60 (200.00)")
	assert.Contains(t, result, ":STOP_LOSS: 45 (100.00)")
	assert.Contains(t, result, ":REWARD_RISK: 2.00")
	assert.Contains(t, result, ":OPEN_TIME: 2024-07-01T09:00:00Z")
	assert.Contains(t, result, ":CLOSE_TIME: 2024-07-03T12:30:00Z")
	assert.Contains(t, result, ":REALIZED_PL: 150.00")
	assert.Contains(t, result, ":PL_PCT_CAPITAL: 15.00")
	assert.Contains(t, result, ":END:")

	// Notes open the thesis
	assert.Contains(t, result, "*** Thesis\n- breakout\n")
	assert.Contains(t, result, "*** Execution")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradeOrgOpenTrade(t *testing.T) {
	t.Parallel()

	trade := samplePortfolio("p1").Trades[1]
	result := FormatTradeOrg(trade)

	assert.Contains(t, result, "** Trade: ETH (tr2) :open:")
	assert.NotContains(t, result, ":CLOSE_TIME:")
	assert.NotContains(t, result, ":REALIZED_PL:")
	assert.Contains(t, result, "*** Thesis\n- \n")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	trades := samplePortfolio("p1").Trades
	result := FormatTradesOrg(trades)

	assert.Equal(t, 2, strings.Count(result, ":PROPERTIES:"))
	assert.Contains(t, result, "- \n\n\n** Trade: ETH")
	assert.Empty(t, FormatTradesOrg(nil))
}

func TestWritePortfolioOrg(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	now := time.Date(2024, 7, 4, 8, 15, 0, 0, time.UTC)
	require.NoError(t, WritePortfolioOrg(&buf, samplePortfolio("p1"), now))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "* PORTFOLIO: Swing p1\n"))
	assert.Contains(t, out, ":CURRENT_CAP:  1150.00")
	assert.Contains(t, out, ":TARGET:       First (2000.00)")
	assert.Contains(t, out, ":STAGE_PCT:    15.00")
	assert.Contains(t, out, ":PROFIT_FAC:   (no losses)")
	assert.Contains(t, out, ":CREATED:      [2024-07-04 Thu 08:15]")
	assert.Contains(t, out, "- Estimate:       *insufficient-data*")
	assert.Contains(t, out, "| 2024-07 | 1 | 1 | 0 | 150.00 |")
	assert.Contains(t, out, "| BTC | 1 | 100.0% | 150.00 |")
	assert.Contains(t, out, "** Trade: BTC (tr1)")

	var empty bytes.Buffer
	require.NoError(t, WritePortfolioOrg(&empty, portfolio.Portfolio{Name: "Empty"}, now))
	assert.NotContains(t, empty.String(), ":TARGET:")
}
