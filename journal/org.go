package journal

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/rustyeddy/tracker/stats"
	"github.com/shopspring/decimal"
)

// FormatTradeOrg renders a trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in a PROPERTIES drawer; the trade notes open the Thesis section.
func FormatTradeOrg(t portfolio.Trade) string {
	heading := fmt.Sprintf("** Trade: %s (%s)", t.AssetName, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	if t.IsOpen() {
		b.WriteString(" :open:")
	}
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ASSET: %s\n", t.AssetName))
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", t.Status))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %s\n", t.EntryPrice.String()))
	b.WriteString(fmt.Sprintf(":TRADE_VALUE: %s\n", t.TradeValue.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":SHARES: %s\n", t.Shares().StringFixed(4)))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %s (%s)\n", t.TakeProfitPrice.String(), t.TakeProfit.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %s (%s)\n", t.StopLossPrice.String(), t.StopLoss.StringFixed(2)))
	b.WriteString(fmt.Sprintf(":REWARD_RISK: %.2f\n", t.RewardRisk()))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", isoDate(t.OpenDate)))
	if t.IsClosed() {
		b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", isoDate(t.CloseDate)))
		b.WriteString(fmt.Sprintf(":REALIZED_PL: %s\n", t.PnL.StringFixed(2)))
		b.WriteString(fmt.Sprintf(":PL_PCT_CAPITAL: %.2f\n", t.PnLPercentOfCapital()))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")

	b.WriteString("*** Thesis\n")
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		for _, line := range strings.Split(notes, "\n") {
			b.WriteString("- " + strings.TrimSpace(line) + "\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("- \n\n")
	}
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []portfolio.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

// portfolioOrg is the data behind PortfolioOrgTemplate.
type portfolioOrg struct {
	Portfolio portfolio.Portfolio
	Snapshot  progress.Snapshot
	Summary   stats.Summary
	MaxDDPct  float64
	Months    []stats.Month
	Assets    []stats.Asset
	Created   time.Time
	Trades    string
}

var portfolioOrgFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

// WritePortfolioOrg writes an Org-mode review of the whole portfolio: a
// summary drawer, monthly and per-asset tables, then every trade.
func WritePortfolioOrg(w io.Writer, p portfolio.Portfolio, now time.Time) error {
	t, err := template.New("portfolio").Funcs(portfolioOrgFuncs).Parse(PortfolioOrgTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, portfolioOrg{
		Portfolio: p,
		Snapshot:  progress.Take(p),
		Summary:   stats.Summarize(p.Trades),
		MaxDDPct:  stats.MaxDrawdownPct(stats.EquityCurve(p.InitialCapital, p.Trades)),
		Months:    stats.Monthly(p.Trades, time.UTC),
		Assets:    stats.ByAsset(p.Trades),
		Created:   now,
		Trades:    FormatTradesOrg(p.Trades),
	})
}

const PortfolioOrgTemplate = `* PORTFOLIO: {{.Portfolio.Name}}
:PROPERTIES:
:PORTFOLIO_ID: {{.Portfolio.ID}}
:CURRENCY:     {{.Portfolio.Currency}}
:START_CAP:    {{money .Portfolio.InitialCapital}}
:CURRENT_CAP:  {{money .Snapshot.Capital}}
:NET_PL:       {{money .Snapshot.NetPnL}}
{{- if .Snapshot.HasTarget}}
:TARGET:       {{.Snapshot.Target.Name}} ({{money .Snapshot.Target.Amount}})
:STAGE_PCT:    {{printf "%.2f" .Snapshot.Stage.Percent}}
{{- end}}
:TRADES:       {{.Summary.Trades}}
:WINS:         {{.Summary.Wins}}
:LOSSES:       {{.Summary.Losses}}
:WIN_RATE:     {{printf "%.2f" .Summary.WinRate}}
:PROFIT_FAC:   {{if ne .Summary.ProfitFactor 0.0}}{{printf "%.2f" .Summary.ProfitFactor}}{{else}}(no losses){{end}}
:MAX_DD_PCT:   {{printf "%.2f" .MaxDDPct}}
:CREATED:      [{{.Created.Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:        *{{money .Summary.NetProfit}}*
- Average win:    *{{money .Summary.AvgWin}}*
- Average loss:   *{{money .Summary.AvgLoss}}*
- Estimate:       *{{.Snapshot.Estimate.Outcome}}{{if .Snapshot.Estimate.Trades}} ({{.Snapshot.Estimate.Trades}} trades){{end}}*

** Monthly
| Month | Trades | Wins | Losses | Net P/L |
|-------+--------+------+--------+---------|
{{- range .Months}}
| {{.Label}} | {{.Trades}} | {{.Wins}} | {{.Losses}} | {{money .NetPnL}} |
{{- end}}

** Assets
| Asset | Trades | Win rate | Net P/L |
|-------+--------+----------+---------|
{{- range .Assets}}
| {{.Name}} | {{.Trades}} | {{printf "%.1f" .WinRate}}% | {{money .NetPnL}} |
{{- end}}

{{.Trades}}`
