package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// Month is one calendar bucket of closed trades.
type Month struct {
	Year   int
	Month  time.Month
	Trades int
	Wins   int
	Losses int
	NetPnL decimal.Decimal
}

// Label formats the bucket as "2024-07".
func (m Month) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Monthly buckets closed trades by the calendar month of their close date
// in loc, most recent month first. Trades without a close date are skipped.
func Monthly(trades []portfolio.Trade, loc *time.Location) []Month {
	if loc == nil {
		loc = time.Local
	}

	type key struct {
		year  int
		month time.Month
	}
	buckets := map[key]*Month{}
	for _, t := range trades {
		if !t.IsClosed() || t.CloseDate.IsZero() {
			continue
		}
		c := t.CloseDate.In(loc)
		k := key{c.Year(), c.Month()}
		m, ok := buckets[k]
		if !ok {
			m = &Month{Year: k.year, Month: k.month}
			buckets[k] = m
		}
		m.Trades++
		m.NetPnL = m.NetPnL.Add(t.PnL)
		switch t.PnL.Sign() {
		case 1:
			m.Wins++
		case -1:
			m.Losses++
		}
	}

	out := make([]Month, 0, len(buckets))
	for _, m := range buckets {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Month) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return out
}
