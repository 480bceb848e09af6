package analyze

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tracker/portfolio"
)

const instructions = `You are an expert trading analyst providing feedback to a new trader.
Analyze the following closed trade and provide concise, actionable advice.
Structure your response with a title, a brief summary, and 2-3 bullet points for improvement.
Keep the language simple and encouraging.`

// Prompt builds the review request for a closed trade.
func Prompt(t portfolio.Trade) string {
	outcome := "breakeven"
	switch {
	case t.PnL.IsPositive():
		outcome = "profit"
	case t.PnL.IsNegative():
		outcome = "loss"
	}

	notes := strings.TrimSpace(t.Notes)
	if notes == "" {
		notes = "No notes provided."
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nTrade Details:\n")
	fmt.Fprintf(&b, "- Asset: %s\n", t.AssetName)
	fmt.Fprintf(&b, "- Status: Closed with a %s of %s\n", outcome, t.PnL.Abs().StringFixed(2))
	fmt.Fprintf(&b, "- Entry Price: %s\n", t.EntryPrice)
	fmt.Fprintf(&b, "- Initial Trade Value: %s\n", t.TradeValue)
	fmt.Fprintf(&b, "- Take Profit Price Target: %s\n", t.TakeProfitPrice)
	fmt.Fprintf(&b, "- Stop Loss Price Target: %s\n", t.StopLossPrice)
	fmt.Fprintf(&b, "- Trade Duration (days): %s\n", durationDays(t))
	fmt.Fprintf(&b, "- Trader's Notes: %s\n", notes)
	b.WriteString("\nPlease provide your analysis now.")
	return b.String()
}

func durationDays(t portfolio.Trade) string {
	if t.OpenDate.IsZero() || t.CloseDate.IsZero() {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", t.CloseDate.Sub(t.OpenDate).Hours()/24)
}
