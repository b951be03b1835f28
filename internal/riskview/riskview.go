// Package riskview is a read-only, non-gating aggregation of
// leverage-free risk metrics across a strategy's open positions
// (spec.md §4.9 supplemented feature). It is a pure reporting adapter:
// internal/rules remains the sole compliance gate.
//
// Grounded on risk-manager/internal/risk/calculator.go's RiskMetrics
// shape, re-derived here from this engine's own position/ledger data
// instead of a live margin feed (margin/leverage are Non-goals).
package riskview

import (
	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/hierarchy"
)

// Snapshot is a point-in-time risk view for one strategy.
type Snapshot struct {
	StrategyName string

	OpenPositionCount int
	TradeCount        int

	// Concentration maps symbol -> |market value| / capital * 100.
	Concentration map[string]decimal.Decimal

	LargestPositionSymbol string
	LargestPositionPct    decimal.Decimal

	CashHeadroomPct decimal.Decimal
}

// Compute builds a Snapshot from the strategy's current open positions
// and the supplied price mapping (falling back to average entry price
// for any symbol absent from it).
func Compute(s *hierarchy.Strategy, prices map[string]decimal.Decimal) Snapshot {
	snap := Snapshot{
		StrategyName:  s.Name,
		Concentration: make(map[string]decimal.Decimal),
		TradeCount:    s.Ledger().Count(),
	}

	if s.Capital.IsZero() {
		return snap
	}

	for _, pos := range s.OpenPositions() {
		snap.OpenPositionCount++

		price := pos.AvgEntry
		if prices != nil {
			if p, ok := prices[pos.Symbol]; ok {
				price = p
			}
		}
		marketValue := pos.Quantity.Abs().Mul(price)
		pct := marketValue.Div(s.Capital).Mul(decimal.NewFromInt(100))
		snap.Concentration[pos.Symbol] = pct

		if pct.GreaterThan(snap.LargestPositionPct) {
			snap.LargestPositionPct = pct
			snap.LargestPositionSymbol = pos.Symbol
		}
	}

	cash := s.CashBalance(prices)
	snap.CashHeadroomPct = cash.Div(s.Capital).Mul(decimal.NewFromInt(100))

	return snap
}
