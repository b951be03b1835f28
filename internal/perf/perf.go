// Package perf implements the performance metrics engine: equity
// curve reconstruction from a ledger and a price mapping, return,
// volatility, drawdown, and risk-adjusted statistics (spec.md §4.8),
// grounded on tools/performance/performance.py's PerformanceMetrics,
// adapted to classify winning/losing trades by the Realized flag the
// TMS sets on quantity-reducing legs (§9 open-question resolution)
// rather than the reference's dead is_opening attribute.
package perf

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/trade"
)

const tradingDaysPerYear = 252.0

// Metrics is the stable result of a performance computation, suitable
// for CSV/JSON export (spec.md §6 metrics-to-dict schema).
type Metrics struct {
	OwnerName string
	OwnerType string

	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal

	TotalReturn    decimal.Decimal
	TotalReturnPct decimal.Decimal
	CAGR           decimal.Decimal

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    decimal.Decimal

	AverageTradePnL decimal.Decimal
	LargestWin      decimal.Decimal
	LargestLoss     decimal.Decimal
	ProfitFactor    float64 // +Inf representable; decimal has no infinity

	MaxDrawdownPct decimal.Decimal

	VolatilityPct        decimal.Decimal
	DownsideDeviationPct decimal.Decimal

	SharpeRatio  decimal.Decimal
	SortinoRatio decimal.Decimal
	CalmarRatio  decimal.Decimal

	TotalVolume    decimal.Decimal
	TradeFrequency float64

	EquityCurve []decimal.Decimal
}

// Compute derives the full Metrics set for one owner from its ledger,
// its capital as the initial balance, and an optional current-price
// mapping (nil falls back to tracked average entry price throughout,
// the conservative estimate per §4.6).
func Compute(ownerName, ownerType string, l *ledger.Ledger, initialBalance decimal.Decimal, prices map[string]decimal.Decimal, riskFreeRate decimal.Decimal) Metrics {
	trades := sortedByFillTime(l.FilledTrades())

	curve, cumulativeRealized := equityCurve(trades, initialBalance, prices)
	currentBalance := initialBalance
	if len(curve) > 0 {
		currentBalance = curve[len(curve)-1]
	}

	totalReturn := currentBalance.Sub(initialBalance)
	totalReturnPct := decimal.Zero
	if !initialBalance.IsZero() {
		totalReturnPct = totalReturn.Div(initialBalance).Mul(decimal.NewFromInt(100))
	}

	span, ok := tradeSpan(trades)
	cagr := totalReturnPct
	if ok {
		years := span.Hours() / 24 / 365.25
		if years >= 4.0/365.25 {
			base := currentBalance.Div(initialBalance)
			if !initialBalance.IsZero() && base.IsPositive() {
				cagr = decimal.NewFromFloat(math.Pow(base.InexactFloat64(), 1.0/years) - 1).Mul(decimal.NewFromInt(100))
			}
		}
	}

	winners, losers := closingTrades(trades)
	winCount, loseCount := len(winners), len(losers)
	winRate := decimal.Zero
	if winCount+loseCount > 0 {
		winRate = decimal.NewFromInt(int64(winCount)).Div(decimal.NewFromInt(int64(winCount + loseCount))).Mul(decimal.NewFromInt(100))
	}

	grossProfit := sumPnL(winners)
	grossLoss := sumPnL(losers).Abs()
	profitFactor := 0.0
	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			profitFactor = math.Inf(1)
		}
	} else {
		profitFactor = grossProfit.Div(grossLoss).InexactFloat64()
	}

	avgPnL := decimal.Zero
	allClosing := append(append([]*trade.Trade{}, winners...), losers...)
	if len(allClosing) > 0 {
		avgPnL = sumPnL(allClosing).Div(decimal.NewFromInt(int64(len(allClosing))))
	}

	largestWin := decimal.Zero
	for _, t := range winners {
		if t.RealizedPnL.GreaterThan(largestWin) {
			largestWin = t.RealizedPnL
		}
	}
	largestLoss := decimal.Zero
	for _, t := range losers {
		if t.RealizedPnL.LessThan(largestLoss) {
			largestLoss = t.RealizedPnL
		}
	}

	maxDD := maxDrawdownPct(curve)

	returns := periodReturns(curve)
	vol := stdDevPct(returns) * math.Sqrt(tradingDaysPerYear)
	downside := downsideDeviationPct(returns) * math.Sqrt(tradingDaysPerYear)

	cagrF := cagr.InexactFloat64()
	rf := riskFreeRate.InexactFloat64()
	sharpe := ratioOrZero(cagrF-rf, vol)
	sortino := ratioOrZero(cagrF-rf, downside)
	calmar := ratioOrZero(cagrF, math.Abs(maxDD.InexactFloat64()))

	freq := 0.0
	if ok {
		days := math.Max(span.Hours()/24, 1)
		freq = float64(len(trades)) / days
	}

	_ = cumulativeRealized

	return Metrics{
		OwnerName:            ownerName,
		OwnerType:            ownerType,
		InitialBalance:       initialBalance,
		CurrentBalance:       currentBalance,
		TotalReturn:          totalReturn,
		TotalReturnPct:       totalReturnPct,
		CAGR:                 cagr,
		TotalTrades:          len(trades),
		WinningTrades:        winCount,
		LosingTrades:         loseCount,
		WinRatePct:           winRate,
		AverageTradePnL:      avgPnL,
		LargestWin:           largestWin,
		LargestLoss:          largestLoss,
		ProfitFactor:         profitFactor,
		MaxDrawdownPct:       maxDD,
		VolatilityPct:        decimal.NewFromFloat(vol),
		DownsideDeviationPct: decimal.NewFromFloat(downside),
		SharpeRatio:          decimal.NewFromFloat(sharpe),
		SortinoRatio:         decimal.NewFromFloat(sortino),
		CalmarRatio:          decimal.NewFromFloat(calmar),
		TotalVolume:          l.TotalVolume(""),
		TradeFrequency:       freq,
		EquityCurve:          curve,
	}
}

func sortedByFillTime(trades []*trade.Trade) []*trade.Trade {
	out := append([]*trade.Trade{}, trades...)
	sort.Slice(out, func(i, j int) bool { return out[i].FilledAt.Before(out[j].FilledAt) })
	return out
}

type openLot struct {
	qty decimal.Decimal
	avg decimal.Decimal
}

// equityCurve replays trades sorted by fill time, tracking a per-
// symbol (signed_qty, avg_price) map with the same formulas as §4.5,
// and computing equity at each step per §4.8's formula. Returns the
// curve (including the initial-balance seed point) and the final
// cumulative realized P&L.
func equityCurve(trades []*trade.Trade, initialBalance decimal.Decimal, prices map[string]decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	curve := []decimal.Decimal{initialBalance}
	lots := make(map[string]*openLot)
	cumRealized := decimal.Zero

	for _, t := range trades {
		lot, ok := lots[t.Symbol]
		if !ok {
			lot = &openLot{qty: decimal.Zero, avg: decimal.Zero}
			lots[t.Symbol] = lot
		}

		signed := t.SignedQuantity()
		opening := t.Direction.Opening(lot.qty)

		if opening {
			oldValue := lot.qty.Mul(lot.avg)
			newValue := signed.Mul(t.AvgFillPrice)
			lot.qty = lot.qty.Add(signed)
			if !lot.qty.IsZero() {
				lot.avg = oldValue.Add(newValue).Div(lot.qty)
			}
		} else {
			closingQty := t.FilledQuantity
			var pnl decimal.Decimal
			if lot.qty.Sign() > 0 {
				pnl = t.AvgFillPrice.Sub(lot.avg).Mul(closingQty)
			} else {
				pnl = lot.avg.Sub(t.AvgFillPrice).Mul(closingQty)
			}
			cumRealized = cumRealized.Add(pnl)
			lot.qty = lot.qty.Add(signed)
		}

		unrealized := decimal.Zero
		for symbol, l := range lots {
			if l.qty.IsZero() {
				continue
			}
			price := l.avg
			if prices != nil {
				if p, ok := prices[symbol]; ok {
					price = p
				}
			}
			unrealized = unrealized.Add(price.Sub(l.avg).Mul(l.qty))
		}

		equity := initialBalance.Add(cumRealized).Add(unrealized)
		curve = append(curve, equity)
	}

	return curve, cumRealized
}

func tradeSpan(trades []*trade.Trade) (time.Duration, bool) {
	if len(trades) == 0 {
		return 0, false
	}
	first := trades[0].CreatedAt
	last := trades[len(trades)-1].FilledAt
	if last.Before(first) {
		return 0, false
	}
	return last.Sub(first), true
}

// closingTrades splits the FILLED, realized trades into winners
// (RealizedPnL > 0) and losers (RealizedPnL < 0) per §4.8 and §9's
// classify-by-Realized-flag resolution.
func closingTrades(trades []*trade.Trade) (winners, losers []*trade.Trade) {
	for _, t := range trades {
		if !t.Realized {
			continue
		}
		switch {
		case t.RealizedPnL.IsPositive():
			winners = append(winners, t)
		case t.RealizedPnL.IsNegative():
			losers = append(losers, t)
		}
	}
	return
}

func sumPnL(trades []*trade.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.RealizedPnL)
	}
	return total
}

func maxDrawdownPct(curve []decimal.Decimal) decimal.Decimal {
	if len(curve) == 0 {
		return decimal.Zero
	}
	peak := curve[0]
	worst := decimal.Zero
	for _, v := range curve {
		if v.GreaterThan(peak) {
			peak = v
		}
		if peak.IsZero() {
			continue
		}
		dd := v.Sub(peak).Div(peak).Mul(decimal.NewFromInt(100))
		if dd.LessThan(worst) {
			worst = dd
		}
	}
	return worst
}

func periodReturns(curve []decimal.Decimal) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1]
		if prev.IsZero() {
			out = append(out, 0)
			continue
		}
		ret := curve[i].Sub(prev).Div(prev).InexactFloat64()
		out = append(out, ret)
	}
	return out
}

func stdDevPct(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * 100
}

func downsideDeviationPct(returns []float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	return stdDevPct(negative)
}

func ratioOrZero(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
