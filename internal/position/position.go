// Package position implements the per (strategy, symbol) running
// position state: signed quantity, average entry price, realized P&L,
// and the long/short/flat transitions, using average-cost accounting.
//
// Grounded on account-monitor/internal/position/manager.go's
// UpdatePosition, adapted to credit realized P&L symmetrically on both
// long-close (SELL) and short-close (BUY_TO_COVER) legs.
package position

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/trade"
)

// Position is the running state for one (strategy, symbol) pair.
type Position struct {
	StrategyID string
	Symbol     string

	Quantity     decimal.Decimal
	AvgEntry     decimal.Decimal
	RealizedPnL  decimal.Decimal

	OpeningTrades []*trade.Trade
	ClosingTrades []*trade.Trade

	OpenedAt time.Time
	ClosedAt time.Time
}

// New returns a flat position for the given strategy/symbol.
func New(strategyID, symbol string) *Position {
	return &Position{
		StrategyID:  strategyID,
		Symbol:      symbol,
		Quantity:    decimal.Zero,
		AvgEntry:    decimal.Zero,
		RealizedPnL: decimal.Zero,
	}
}

func (p *Position) IsLong() bool   { return p.Quantity.Sign() > 0 }
func (p *Position) IsShort() bool  { return p.Quantity.Sign() < 0 }
func (p *Position) IsClosed() bool { return p.Quantity.IsZero() }

// CostBasis returns |quantity| * avg_entry_price.
func (p *Position) CostBasis() decimal.Decimal {
	return p.Quantity.Abs().Mul(p.AvgEntry)
}

// MarketValue returns quantity * price (signed).
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}

// UnrealizedPnL returns (price - avg_entry) * quantity, zero when flat.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.IsClosed() {
		return decimal.Zero
	}
	return price.Sub(p.AvgEntry).Mul(p.Quantity)
}

// Apply books a filled trade against the position using average-cost
// accounting, per the §4.5 execution rules:
//
//   - BUY / BUY_TO_COVER increase signed quantity toward/through zero;
//     when the fill adds to an existing same-sign quantity (or opens a
//     flat position) the average entry price is recomputed as a
//     weighted average. When it reduces the magnitude of an opposite-
//     sign (short) quantity, the closing portion realizes P&L using the
//     BEFORE-fill average entry price, symmetrically with SELL against
//     a long.
//   - SELL / SELL_SHORT are the mirror: they reduce/cross a long
//     quantity (realizing P&L on the closing portion) or increase a
//     short quantity (weighted-average on the opening portion).
//
// A single Trade here always corresponds to one already-split
// instruction (§4.2), so it never itself mixes an opening and a
// closing leg across two different symbols; it can however straddle
// zero for the SAME symbol only when the position crosses sign within
// one instruction, which §4.2's split-instruction rule prevents at the
// OMS level. Apply therefore only ever sees a trade that is wholly
// opening or wholly closing relative to the position it is applied to.
func (p *Position) Apply(t *trade.Trade) {
	wasFlat := p.IsClosed()
	if wasFlat {
		p.OpenedAt = t.FilledAt
	}

	signedFill := t.SignedQuantity()
	fillPrice := t.AvgFillPrice

	opening := t.Direction.Opening(p.Quantity)

	if opening {
		oldValue := p.Quantity.Mul(p.AvgEntry)
		newValue := signedFill.Mul(fillPrice)
		p.Quantity = p.Quantity.Add(signedFill)
		if !p.Quantity.IsZero() {
			p.AvgEntry = oldValue.Add(newValue).Div(p.Quantity)
		}
		p.OpeningTrades = append(p.OpeningTrades, t)
	} else {
		closingQty := t.FilledQuantity
		var pnl decimal.Decimal
		if p.Quantity.Sign() > 0 {
			// SELL against a long: realize on the closing quantity.
			pnl = fillPrice.Sub(p.AvgEntry).Mul(closingQty)
		} else {
			// BUY_TO_COVER against a short: realize symmetrically.
			pnl = p.AvgEntry.Sub(fillPrice).Mul(closingQty)
		}
		p.RealizedPnL = p.RealizedPnL.Add(pnl)
		t.Realized = true
		t.RealizedPnL = pnl

		p.Quantity = p.Quantity.Add(signedFill)
		p.ClosingTrades = append(p.ClosingTrades, t)
		if p.Quantity.IsZero() {
			p.ClosedAt = t.FilledAt
		}
	}
}
