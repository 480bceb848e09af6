package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	t1 = time.Date(2024, 7, 3, 12, 30, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func newPortfolio(t *testing.T) portfolio.Portfolio {
	t.Helper()
	p, err := NewPortfolio("  Swing  ", d("1000"), d("2000"), "", t0)
	require.NoError(t, err)
	return p
}

func input(asset string) portfolio.TradeInput {
	return portfolio.TradeInput{
		AssetName:       asset,
		EntryPrice:      d("50"),
		TradeValue:      d("1000"),
		TakeProfitPrice: d("60"),
		StopLossPrice:   d("45"),
		Notes:           " breakout ",
	}
}

func TestNewPortfolio(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Swing", p.Name)
	assert.Equal(t, portfolio.DefaultCurrency, p.Currency)
	require.Len(t, p.Targets, 1)
	assert.Equal(t, portfolio.DefaultTargetName, p.Targets[0].Name)
	assert.True(t, p.Targets[0].Amount.Equal(d("2000")))
	assert.NotNil(t, p.Trades)
	assert.Empty(t, p.Trades)
}

func TestNewPortfolioRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pname    string
		capital  string
		target   string
		currency string
		field    string
	}{
		{"blank name", " ", "1000", "2000", "USD", "portfolio_name"},
		{"zero capital", "A", "0", "2000", "USD", "initial_capital"},
		{"negative target", "A", "1000", "-1", "USD", "target"},
		{"bad currency", "A", "1000", "2000", "dollars", "currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewPortfolio(tt.pname, d(tt.capital), d(tt.target), tt.currency, t0)
			require.Error(t, err)
			assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
			var ve *portfolio.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestOpenTrade(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	next, err := OpenTrade(input(" btc "), t1)(p)
	require.NoError(t, err)

	assert.Empty(t, p.Trades, "input portfolio must be untouched")
	require.Len(t, next.Trades, 1)

	tr := next.Trades[0]
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "BTC", tr.AssetName)
	assert.Equal(t, portfolio.StatusOpen, tr.Status)
	assert.True(t, tr.PnL.IsZero())
	assert.True(t, tr.TakeProfit.Equal(d("200")))
	assert.True(t, tr.StopLoss.Equal(d("100")))
	assert.True(t, tr.CapitalBeforeTrade.Equal(d("1000")))
	assert.Equal(t, t1, tr.OpenDate)
	assert.True(t, tr.CloseDate.IsZero())
	assert.Equal(t, "breakout", tr.Notes)
}

func TestZeroTimeStillGetsIDs(t *testing.T) {
	t.Parallel()

	var p portfolio.Portfolio
	require.NotPanics(t, func() {
		var err error
		p, err = NewPortfolio("Swing", d("1000"), d("2000"), "USD", time.Time{})
		require.NoError(t, err)
		p, err = OpenTrade(input("btc"), time.Time{})(p)
		require.NoError(t, err)
	})
	assert.NotEmpty(t, p.ID)
	require.Len(t, p.Trades, 1)
	assert.NotEmpty(t, p.Trades[0].ID)
}

func TestOpenTradeSnapshotsCurrentCapital(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	p, err := OpenTrade(input("ETH"), t0)(p)
	require.NoError(t, err)
	p, err = CloseTrade(p.Trades[0].ID, d("150"), t1)(p)
	require.NoError(t, err)
	p, err = OpenTrade(input("ETH"), t1)(p)
	require.NoError(t, err)

	assert.True(t, p.Trades[1].CapitalBeforeTrade.Equal(d("1150")))
}

func TestOpenTradeValidation(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	bad := input("BTC")
	bad.StopLossPrice = d("55")

	next, err := OpenTrade(bad, t1)(p)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
	assert.Empty(t, next.Trades)
}

func TestUpdateTrade(t *testing.T) {
	t.Parallel()

	p, err := OpenTrade(input("AAPL"), t0)(newPortfolio(t))
	require.NoError(t, err)
	id := p.Trades[0].ID

	p, err = UpdateTrade(id, TradeEdit{
		TakeProfitPrice: ptr(d("70")),
		Notes:           ptr("scaled target"),
	})(p)
	require.NoError(t, err)

	tr := p.Trades[0]
	assert.True(t, tr.TakeProfitPrice.Equal(d("70")))
	assert.True(t, tr.TakeProfit.Equal(d("400")))
	assert.True(t, tr.StopLoss.Equal(d("100")))
	assert.Equal(t, "scaled target", tr.Notes)
	assert.Equal(t, "AAPL", tr.AssetName)
}

func TestUpdateTradeRevalidates(t *testing.T) {
	t.Parallel()

	p, err := OpenTrade(input("AAPL"), t0)(newPortfolio(t))
	require.NoError(t, err)

	next, err := UpdateTrade(p.Trades[0].ID, TradeEdit{EntryPrice: ptr(d("65"))})(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
	assert.True(t, next.Trades[0].EntryPrice.Equal(d("50")))
}

func TestClosedTradeIsImmutable(t *testing.T) {
	t.Parallel()

	p, err := OpenTrade(input("TSLA"), t0)(newPortfolio(t))
	require.NoError(t, err)
	id := p.Trades[0].ID

	p, err = CloseTrade(id, d("-40"), t1)(p)
	require.NoError(t, err)
	closed := p.Trades[0]
	assert.Equal(t, portfolio.StatusClosed, closed.Status)
	assert.True(t, closed.PnL.Equal(d("-40")))
	assert.Equal(t, t1, closed.CloseDate)

	_, err = UpdateTrade(id, TradeEdit{Notes: ptr("rewrite history")})(p)
	assert.ErrorIs(t, err, ErrTradeClosed)

	_, err = CloseTrade(id, d("100"), t1.Add(time.Hour))(p)
	assert.ErrorIs(t, err, ErrTradeClosed)

	assert.Equal(t, closed, p.Trades[0])
}

func TestTradeNotFound(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	for _, u := range []Updater{
		UpdateTrade("nope", TradeEdit{}),
		CloseTrade("nope", d("1"), t1),
		DeleteTrade("nope"),
	} {
		_, err := u(p)
		assert.ErrorIs(t, err, ErrTradeNotFound)
	}
}

func TestDeleteTrade(t *testing.T) {
	t.Parallel()

	p, err := Chain(
		OpenTrade(input("BTC"), t0),
		OpenTrade(input("ETH"), t0.Add(time.Minute)),
	)(newPortfolio(t))
	require.NoError(t, err)
	require.Len(t, p.Trades, 2)

	p, err = CloseTrade(p.Trades[0].ID, d("30"), t1)(p)
	require.NoError(t, err)
	p, err = DeleteTrade(p.Trades[0].ID)(p)
	require.NoError(t, err)

	require.Len(t, p.Trades, 1)
	assert.Equal(t, "ETH", p.Trades[0].AssetName)
}

func TestPortfolioSettings(t *testing.T) {
	t.Parallel()

	p, err := Chain(
		Rename(" Long term "),
		SetCurrency("eur"),
		SetInitialCapital(d("2500")),
	)(newPortfolio(t))
	require.NoError(t, err)

	assert.Equal(t, "Long term", p.Name)
	assert.Equal(t, "EUR", p.Currency)
	assert.True(t, p.InitialCapital.Equal(d("2500")))

	_, err = SetInitialCapital(d("-5"))(p)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
	_, err = Rename("")(p)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
	_, err = SetCurrency("EURO")(p)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
}

func TestChainStopsAtFirstError(t *testing.T) {
	t.Parallel()

	p := newPortfolio(t)
	_, err := Chain(Rename("ok"), Rename(""), Rename("never"))(p)
	assert.ErrorIs(t, err, portfolio.ErrInvalidInput)
	assert.Equal(t, "Swing", p.Name)
}
