package progress

import (
	"math"

	"github.com/rustyeddy/tracker/portfolio"
	"github.com/shopspring/decimal"
)

// MinSampleSize is the number of closed trades required before the average
// growth rate is trusted for a projection. It is a fixed policy.
const MinSampleSize = 5

// Outcome tells which branch EstimateTradesToTarget took.
type Outcome int

const (
	// Estimated means Trades holds a projection.
	Estimated Outcome = iota
	// Achieved means there is no target left to reach.
	Achieved
	// InsufficientData means fewer than MinSampleSize trades are closed.
	InsufficientData
	// NonPositiveRate means average compounding can never reach the target.
	NonPositiveRate
)

func (o Outcome) String() string {
	switch o {
	case Estimated:
		return "estimated"
	case Achieved:
		return "achieved"
	case InsufficientData:
		return "insufficient-data"
	case NonPositiveRate:
		return "non-positive-rate"
	default:
		return "unknown"
	}
}

// Estimate is the projection of trades left before the active target.
type Estimate struct {
	Outcome       Outcome
	Trades        int
	AvgGrowthRate float64
	SampleSize    int
}

// GrowthRate is pnl / capitalBeforeTrade, or 0 when no capital was recorded.
func GrowthRate(t portfolio.Trade) float64 {
	if !t.CapitalBeforeTrade.IsPositive() {
		return 0
	}
	return t.PnL.Div(t.CapitalBeforeTrade).InexactFloat64()
}

// AvgGrowthRate is the mean growth rate over every closed trade given.
func AvgGrowthRate(closed []portfolio.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	var sum float64
	for _, t := range closed {
		sum += GrowthRate(t)
	}
	return sum / float64(len(closed))
}

// EstimateTradesToTarget projects how many average trades, compounding at
// the historical mean growth rate, bring capital to the active target:
//
//	n = ceil(ln(target/capital) / ln(1+rate))
//
// The checks run in order: achieved, insufficient data, non-positive rate.
func EstimateTradesToTarget(closed []portfolio.Trade, capital decimal.Decimal, active portfolio.Target, hasActive bool) Estimate {
	est := Estimate{
		AvgGrowthRate: AvgGrowthRate(closed),
		SampleSize:    len(closed),
	}

	switch {
	case !hasActive || capital.GreaterThanOrEqual(active.Amount):
		est.Outcome = Achieved
	case len(closed) < MinSampleSize:
		est.Outcome = InsufficientData
	case est.AvgGrowthRate <= 0 || !capital.IsPositive():
		// ln(target/capital) is undefined for non-positive capital
		est.Outcome = NonPositiveRate
	default:
		ratio := active.Amount.Div(capital).InexactFloat64()
		n := math.Ceil(math.Log(ratio) / math.Log1p(est.AvgGrowthRate))
		if math.IsInf(n, 0) || math.IsNaN(n) || n > math.MaxInt32 {
			est.Outcome = NonPositiveRate
			break
		}
		est.Outcome = Estimated
		est.Trades = int(n)
	}
	return est
}
