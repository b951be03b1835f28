// Package simulate implements the historical simulator driver
// collaborator (spec.md §6, §4.9 supplemented feature): it replays a
// Strategy day by day over a caller-supplied price history with no
// look-ahead, applying commission through the TMS's existing
// CommissionPct and optional symmetric slippage to each fill.
//
// Grounded on tools/backtesting/backtester.py plus the position-
// sizing call shape of strategy-engine/internal/risk/risk.go.
package simulate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/hierarchy"
	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/perf"
	"github.com/b25/tradingcore/internal/trade"
)

// PricePoint is one timestamped price snapshot across symbols.
type PricePoint struct {
	Time   time.Time
	Prices map[string]decimal.Decimal
}

// Intent is one order a Decider wants placed at the current timestamp.
type Intent struct {
	Symbol    string
	Action    oms.Action
	Quantity  decimal.Decimal
	OrderType trade.Type
	StopPrice *decimal.Decimal
}

// Decider is the caller-supplied decision hook. It receives only the
// prefix of history up to and including the current day — never the
// future — and returns zero or more Intents to place that day.
type Decider func(day int, now time.Time, history []PricePoint, strategy *hierarchy.Strategy) []Intent

// Simulator drives a Strategy day by day over a price history.
type Simulator struct {
	// SlippagePct perturbs each fill symmetrically: buys fill
	// SlippagePct higher, sells/shorts fill SlippagePct lower. Zero
	// disables slippage.
	SlippagePct  decimal.Decimal
	RiskFreeRate decimal.Decimal
}

// Snapshot is one day's equity reading, returned alongside the metrics
// computed as of that day.
type Snapshot struct {
	Time    time.Time
	Equity  decimal.Decimal
	Metrics perf.Metrics
}

// Run replays history against strategy, invoking decide once per day
// with the no-look-ahead prefix, then recording an equity snapshot.
func (s Simulator) Run(strategy *hierarchy.Strategy, history []PricePoint, decide Decider) []Snapshot {
	out := make([]Snapshot, 0, len(history))

	for i, point := range history {
		prefix := history[:i+1]
		intents := decide(i, point.Time, prefix, strategy)

		for _, intent := range intents {
			basePrice, ok := point.Prices[intent.Symbol]
			if !ok {
				continue
			}
			fillPrice := s.applySlippage(intent.Action, basePrice)
			// Errors (rule violations, insufficient funds) are the
			// decider's responsibility to avoid or tolerate; the
			// simulator does not abort a run on a rejected intent.
			_, _, _ = strategy.PlaceOrder(intent.Symbol, intent.Action, intent.Quantity, intent.OrderType, fillPrice, intent.StopPrice, point.Time)
		}

		metrics := strategy.PerformanceMetrics(point.Prices, s.RiskFreeRate)
		out = append(out, Snapshot{Time: point.Time, Equity: metrics.CurrentBalance, Metrics: metrics})
	}

	return out
}

func (s Simulator) applySlippage(action oms.Action, price decimal.Decimal) decimal.Decimal {
	if !s.SlippagePct.IsPositive() {
		return price
	}
	adj := price.Mul(s.SlippagePct)
	if action == oms.ActionBuy {
		return price.Add(adj)
	}
	return price.Sub(adj)
}
