// journal/csv.go
package journal

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{
	"ID",
	"Asset Name",
	"Status",
	"Open Date",
	"Close Date",
	"Entry Price",
	"Trade Value",
	"Number of Shares",
	"Take Profit Price",
	"Stop Loss Price",
	"Final PnL",
	"PnL Percentage",
	"Notes",
}

// WriteCSV exports the ledger of p, one row per trade in ledger order.
func WriteCSV(w io.Writer, p portfolio.Portfolio) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, t := range p.Trades {
		pnl := decimal.Zero
		if t.IsClosed() {
			pnl = t.PnL
		}
		err := cw.Write([]string{
			t.ID,
			t.AssetName,
			string(t.Status),
			isoDate(t.OpenDate),
			isoDate(t.CloseDate),
			t.EntryPrice.String(),
			t.TradeValue.String(),
			t.Shares().StringFixed(4),
			t.TakeProfitPrice.String(),
			t.StopLossPrice.String(),
			pnl.String(),
			decimal.NewFromFloat(t.PnLPercentOfValue()).StringFixed(2) + "%",
			t.Notes,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}
