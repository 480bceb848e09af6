// Package report renders portfolios and their statistics as markdown.
//
// Every function recomputes what it shows from the portfolio it is given;
// nothing derived is cached.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	md "github.com/nao1215/markdown"
	"github.com/rustyeddy/tracker/currency"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/rustyeddy/tracker/stats"
	"github.com/shopspring/decimal"
)

// Render styles markdown for the terminal. plain returns it untouched.
func Render(markdown string, width int, plain bool) (string, error) {
	if plain {
		return markdown, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render(markdown)
}

// Dashboard is the single-portfolio overview: capital, target progress,
// the trade estimate and the summary figures.
func Dashboard(p portfolio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	money := func(a decimal.Decimal) string { return currency.Format(a, p.Currency) }

	snap := progress.Take(p)
	sum := stats.Summarize(p.ClosedTrades())

	doc.H1(p.Name)
	doc.LF()
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Current capital", money(snap.Capital)},
			{"Initial capital", money(snap.InitialCapital)},
			{"Net P/L", currency.Signed(snap.NetPnL, p.Currency)},
			{"Win rate", currency.Percent(sum.WinRate)},
			{"Open trades", fmt.Sprint(len(p.OpenTrades()))},
			{"Closed trades", fmt.Sprint(sum.Trades)},
		},
	})

	doc.H2("Target")
	if snap.HasTarget {
		doc.PlainText(fmt.Sprintf("%s: %s", snap.Target.Name, money(snap.Target.Amount)))
		doc.LF()
		doc.PlainText(fmt.Sprintf("`%s` %.1f%% of stage %s to %s",
			Bar(snap.Stage.Percent, 20), snap.Stage.Percent, money(snap.Stage.Start), money(snap.Stage.End)))
		doc.LF()
		if snap.AmountToTarget.IsPositive() {
			doc.PlainText(fmt.Sprintf("%s to go.", money(snap.AmountToTarget)))
			doc.LF()
		}
	} else {
		doc.PlainText("No targets set.")
		doc.LF()
	}
	doc.PlainText(EstimateText(snap))

	return doc.String()
}

// EstimateText words the trades-to-target projection.
func EstimateText(s progress.Snapshot) string {
	e := s.Estimate
	switch e.Outcome {
	case progress.Achieved:
		return "All targets reached."
	case progress.InsufficientData:
		return fmt.Sprintf("Close %d more trade(s) for an estimate.", progress.MinSampleSize-e.SampleSize)
	case progress.NonPositiveRate:
		return fmt.Sprintf("Average growth per trade is %s; the target is out of reach at this rate.",
			currency.SignedPercent(e.AvgGrowthRate*100))
	default:
		return fmt.Sprintf("About %d trade(s) to reach %s at %s per trade.",
			e.Trades, s.Target.Name, currency.SignedPercent(e.AvgGrowthRate*100))
	}
}

// Stats renders the aggregated statistics of a portfolio. Months are
// bucketed in loc.
func Stats(p portfolio.Portfolio, loc *time.Location) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	code := p.Currency
	closed := p.ClosedTrades()
	sum := stats.Summarize(closed)

	doc.H1(fmt.Sprintf("%s statistics", p.Name))
	doc.LF()
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Closed trades", fmt.Sprint(sum.Trades)},
			{"Wins / losses / breakeven", fmt.Sprintf("%d / %d / %d", sum.Wins, sum.Losses, sum.Breakevens)},
			{"Win rate", currency.Percent(sum.WinRate)},
			{"Average win", currency.Format(sum.AvgWin, code)},
			{"Average loss", currency.Format(sum.AvgLoss, code)},
			{"Net profit", currency.Signed(sum.NetProfit, code)},
			{"Profit factor", fmt.Sprintf("%.2f", sum.ProfitFactor)},
			{"Average growth per trade", currency.SignedPercent(sum.AvgGrowthRate * 100)},
			{"Max drawdown", currency.Percent(stats.MaxDrawdownPct(stats.EquityCurve(p.InitialCapital, closed)))},
		},
	})

	split := stats.CapitalSplit(p.InitialCapital, progress.Capital(p))
	if split.InProfit {
		doc.PlainText(fmt.Sprintf("Capital: %s initial + %s profit = %s",
			currency.Format(split.Base, code), currency.Format(split.Delta, code), currency.Format(split.Total, code)))
	} else {
		doc.PlainText(fmt.Sprintf("Capital: %s remaining, %s lost of %s",
			currency.Format(split.Base, code), currency.Format(split.Delta, code), currency.Format(split.Total, code)))
	}

	if months := stats.Monthly(closed, loc); len(months) > 0 {
		doc.H2("Monthly")
		doc.LF()
		rows := make([][]string, 0, len(months))
		for _, m := range months {
			rows = append(rows, []string{m.Label(), fmt.Sprint(m.Trades), fmt.Sprint(m.Wins), fmt.Sprint(m.Losses), currency.Signed(m.NetPnL, code)})
		}
		doc.Table(md.TableSet{Header: []string{"Month", "Trades", "Wins", "Losses", "Net P/L"}, Rows: rows})
	}

	if assets := stats.ByAsset(closed); len(assets) > 0 {
		doc.H2("Assets")
		doc.LF()
		rows := make([][]string, 0, len(assets))
		for _, a := range assets {
			rows = append(rows, []string{a.Name, fmt.Sprint(a.Trades), currency.Percent(a.WinRate),
				currency.Signed(a.NetPnL, code), currency.Format(a.AvgWin, code), currency.Format(a.AvgLoss, code)})
		}
		doc.Table(md.TableSet{Header: []string{"Asset", "Trades", "Win rate", "Net P/L", "Avg win", "Avg loss"}, Rows: rows})
	}

	if shares := stats.ProfitShare(closed); len(shares) > 0 {
		doc.H2("Profit share")
		items := make([]string, 0, len(shares))
		for _, s := range shares {
			items = append(items, fmt.Sprintf("%s: %s (%s)", s.Name, currency.Format(s.Profit, code), currency.Percent(s.Percent)))
		}
		doc.BulletList(items...)
	}

	return doc.String()
}

// Trades lists the ledger newest first.
func Trades(p portfolio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	code := p.Currency

	doc.H2(fmt.Sprintf("Trades (%d)", len(p.Trades)))
	if len(p.Trades) == 0 {
		doc.PlainText("No trades yet.")
		return doc.String()
	}
	doc.LF()

	rows := make([][]string, 0, len(p.Trades))
	for i := len(p.Trades) - 1; i >= 0; i-- {
		t := p.Trades[i]
		pnl := "-"
		if t.IsClosed() {
			pnl = fmt.Sprintf("%s (%s)", currency.Signed(t.PnL, code), currency.SignedPercent(t.PnLPercentOfCapital()))
		}
		rows = append(rows, []string{
			t.ID,
			t.AssetName,
			string(t.Status),
			t.OpenDate.Format("2006-01-02"),
			t.EntryPrice.String(),
			currency.Format(t.TradeValue, code),
			fmt.Sprintf("%.2f", t.RewardRisk()),
			pnl,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"ID", "Asset", "Status", "Opened", "Entry", "Value", "R:R", "P/L"},
		Rows:   rows,
	})
	return doc.String()
}

// Targets renders the ladder ascending, marking reached rungs.
func Targets(p portfolio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	capital := progress.Capital(p)
	active, ok := progress.ActiveTarget(p.Targets, capital)

	doc.H2("Targets")
	doc.LF()
	rows := [][]string{}
	for _, t := range progress.SortTargets(p.Targets) {
		state := ""
		switch {
		case capital.GreaterThanOrEqual(t.Amount):
			state = "reached"
		case ok && t.ID == active.ID:
			state = "active"
		}
		rows = append(rows, []string{t.ID, t.Name, currency.Format(t.Amount, p.Currency), state})
	}
	doc.Table(md.TableSet{Header: []string{"ID", "Name", "Amount", "State"}, Rows: rows})
	return doc.String()
}

// Portfolios is the home listing: one row per portfolio plus per-currency
// totals.
func Portfolios(ps []portfolio.Portfolio) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolios")
	if len(ps) == 0 {
		doc.PlainText("No portfolios yet. Create one with `tracker portfolio create`.")
		return doc.String()
	}
	doc.LF()

	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			currency.Format(progress.Capital(p), p.Currency),
			fmt.Sprint(len(p.Trades)),
			currency.Percent(stats.PortfolioWinRate(p)),
		})
	}
	doc.Table(md.TableSet{Header: []string{"ID", "Name", "Capital", "Trades", "Win rate"}, Rows: rows})

	doc.H2("Totals")
	doc.LF()
	totals := stats.Overview(ps)
	trows := make([][]string, 0, len(totals))
	for _, c := range totals {
		trows = append(trows, []string{
			c.Currency,
			fmt.Sprint(c.Portfolios),
			currency.Format(c.InitialCapital, c.Currency),
			currency.Format(c.CurrentCapital, c.Currency),
			currency.Signed(c.NetPnL, c.Currency),
			currency.SignedPercent(c.PnLPercent),
		})
	}
	doc.Table(md.TableSet{Header: []string{"Currency", "Portfolios", "Initial", "Current", "Net P/L", "Return"}, Rows: trows})
	return doc.String()
}

// Bar draws a fixed-width text progress bar for pct in [0, 100].
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))
	return strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
}
