// Package ledger holds the operations that change a portfolio: the trade
// lifecycle and target ladder maintenance.
//
// Each operation is an Updater. Updaters validate before touching anything
// and work on a private copy, so a failed operation leaves the portfolio it
// was given exactly as it was.
package ledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
)

var (
	ErrTradeNotFound  = errors.New("trade not found")
	ErrTradeClosed    = errors.New("trade is closed")
	ErrTargetNotFound = errors.New("target not found")
	ErrLastTarget     = errors.New("cannot delete the last target")
	ErrEmptyLadder    = errors.New("target ladder needs at least one valid target")
)

// Updater maps a portfolio to its next state.
type Updater func(portfolio.Portfolio) (portfolio.Portfolio, error)

// Chain applies updaters in order and stops at the first error.
func Chain(us ...Updater) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		var err error
		for _, u := range us {
			if p, err = u(p); err != nil {
				return p, err
			}
		}
		return p, nil
	}
}

// NewPortfolio builds a portfolio with a one-rung ladder. An empty currency
// falls back to portfolio.DefaultCurrency.
func NewPortfolio(name string, initialCapital, firstTarget decimal.Decimal, currency string, now time.Time) (portfolio.Portfolio, error) {
	name = strings.TrimSpace(name)
	if err := portfolio.ValidateName("portfolio_name", name); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("new portfolio: %w", err)
	}
	if err := portfolio.ValidateCapital(initialCapital); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("new portfolio: %w", err)
	}
	if !firstTarget.IsPositive() {
		return portfolio.Portfolio{}, fmt.Errorf("new portfolio: %w",
			&portfolio.ValidationError{Field: "target", Reason: "must be positive"})
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = portfolio.DefaultCurrency
	}
	if err := portfolio.ValidateCurrency(currency); err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("new portfolio: %w", err)
	}

	return portfolio.Portfolio{
		ID:             id.NewAt(now),
		Name:           name,
		InitialCapital: initialCapital,
		Currency:       currency,
		Targets: []portfolio.Target{{
			ID:     id.NewAt(now),
			Name:   portfolio.DefaultTargetName,
			Amount: firstTarget,
		}},
		Trades:    []portfolio.Trade{},
		UpdatedAt: now,
	}, nil
}

// SetInitialCapital changes the starting capital. Capital snapshots already
// taken by open or closed trades are left alone.
func SetInitialCapital(amount decimal.Decimal) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		if err := portfolio.ValidateCapital(amount); err != nil {
			return p, fmt.Errorf("set initial capital: %w", err)
		}
		p = p.Clone()
		p.InitialCapital = amount
		return p, nil
	}
}

func Rename(name string) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		name := strings.TrimSpace(name)
		if err := portfolio.ValidateName("portfolio_name", name); err != nil {
			return p, fmt.Errorf("rename: %w", err)
		}
		p = p.Clone()
		p.Name = name
		return p, nil
	}
}

func SetCurrency(code string) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		code := strings.ToUpper(strings.TrimSpace(code))
		if err := portfolio.ValidateCurrency(code); err != nil {
			return p, fmt.Errorf("set currency: %w", err)
		}
		p = p.Clone()
		p.Currency = code
		return p, nil
	}
}

// OpenTrade appends a new open trade. The capital snapshot is the current
// capital at the moment the updater runs.
func OpenTrade(in portfolio.TradeInput, now time.Time) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		if err := in.Validate(); err != nil {
			return p, fmt.Errorf("open trade: %w", err)
		}
		tp, sl := portfolio.PlannedAmounts(in.EntryPrice, in.TradeValue, in.TakeProfitPrice, in.StopLossPrice)

		p = p.Clone()
		p.Trades = append(p.Trades, portfolio.Trade{
			ID:                 id.NewAt(now),
			AssetName:          portfolio.NormalizeAsset(in.AssetName),
			EntryPrice:         in.EntryPrice,
			TradeValue:         in.TradeValue,
			TakeProfitPrice:    in.TakeProfitPrice,
			StopLossPrice:      in.StopLossPrice,
			TakeProfit:         tp,
			StopLoss:           sl,
			Status:             portfolio.StatusOpen,
			PnL:                decimal.Zero,
			CapitalBeforeTrade: progress.Capital(p),
			OpenDate:           now,
			Notes:              strings.TrimSpace(in.Notes),
		})
		return p, nil
	}
}

// TradeEdit lists the fields of an open trade that may change. Nil fields
// keep their current value.
type TradeEdit struct {
	EntryPrice      *decimal.Decimal
	TradeValue      *decimal.Decimal
	TakeProfitPrice *decimal.Decimal
	StopLossPrice   *decimal.Decimal
	Notes           *string
}

func (e TradeEdit) apply(in portfolio.TradeInput) portfolio.TradeInput {
	if e.EntryPrice != nil {
		in.EntryPrice = *e.EntryPrice
	}
	if e.TradeValue != nil {
		in.TradeValue = *e.TradeValue
	}
	if e.TakeProfitPrice != nil {
		in.TakeProfitPrice = *e.TakeProfitPrice
	}
	if e.StopLossPrice != nil {
		in.StopLossPrice = *e.StopLossPrice
	}
	if e.Notes != nil {
		in.Notes = strings.TrimSpace(*e.Notes)
	}
	return in
}

// UpdateTrade merges edit into an open trade and recomputes its planned
// amounts. Closed trades are immutable.
func UpdateTrade(tradeID string, edit TradeEdit) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		i := p.TradeIndex(tradeID)
		if i < 0 {
			return p, fmt.Errorf("update trade: %w: %q", ErrTradeNotFound, tradeID)
		}
		t := p.Trades[i]
		if t.IsClosed() {
			return p, fmt.Errorf("update trade: %w: %q", ErrTradeClosed, tradeID)
		}

		in := edit.apply(portfolio.TradeInput{
			AssetName:       t.AssetName,
			EntryPrice:      t.EntryPrice,
			TradeValue:      t.TradeValue,
			TakeProfitPrice: t.TakeProfitPrice,
			StopLossPrice:   t.StopLossPrice,
			Notes:           t.Notes,
		})
		if err := in.Validate(); err != nil {
			return p, fmt.Errorf("update trade: %w", err)
		}

		t.EntryPrice = in.EntryPrice
		t.TradeValue = in.TradeValue
		t.TakeProfitPrice = in.TakeProfitPrice
		t.StopLossPrice = in.StopLossPrice
		t.Notes = in.Notes
		t.TakeProfit, t.StopLoss = portfolio.PlannedAmounts(t.EntryPrice, t.TradeValue, t.TakeProfitPrice, t.StopLossPrice)

		p = p.Clone()
		p.Trades[i] = t
		return p, nil
	}
}

// CloseTrade records the realized P/L. It succeeds once per trade.
func CloseTrade(tradeID string, pnl decimal.Decimal, now time.Time) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		i := p.TradeIndex(tradeID)
		if i < 0 {
			return p, fmt.Errorf("close trade: %w: %q", ErrTradeNotFound, tradeID)
		}
		if p.Trades[i].IsClosed() {
			return p, fmt.Errorf("close trade: %w: %q", ErrTradeClosed, tradeID)
		}

		p = p.Clone()
		t := &p.Trades[i]
		t.Status = portfolio.StatusClosed
		t.PnL = pnl
		t.CloseDate = now
		return p, nil
	}
}

// DeleteTrade removes a trade whatever its status.
func DeleteTrade(tradeID string) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		i := p.TradeIndex(tradeID)
		if i < 0 {
			return p, fmt.Errorf("delete trade: %w: %q", ErrTradeNotFound, tradeID)
		}
		p = p.Clone()
		p.Trades = slices.Delete(p.Trades, i, i+1)
		return p, nil
	}
}
