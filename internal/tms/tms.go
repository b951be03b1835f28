// Package tms implements the Trade Management core: instruction
// execution against a synchronous immediate fill, position
// creation/update via average-cost accounting, and upward ledger
// propagation (spec.md §4.5), grounded on core/trade_management.py's
// TradeManagementSystem and account-monitor/internal/position/manager.go's
// UpdatePosition.
package tms

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/eventlog"
	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/position"
	"github.com/b25/tradingcore/internal/telemetry"
	"github.com/b25/tradingcore/internal/trade"
)

// TMS executes validated instructions against a position table it
// owns exclusively. Exactly one TMS is shared (as the lazy owner) by
// every hierarchy node in a connected subtree, so a single mutex here
// serializes all execution for that subtree per spec.md §5.
type TMS struct {
	mu        sync.Mutex
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	sink      eventlog.Sink
	positions map[string]*position.Position // key: strategyID + "\x00" + symbol

	// CommissionPct is applied to trade value on every fill, matching
	// the simulator's commission model (spec.md §6) so live and
	// simulated runs share the same cost accounting. Zero by default.
	CommissionPct decimal.Decimal
}

type Option func(*TMS)

func WithEventSink(sink eventlog.Sink) Option {
	return func(t *TMS) { t.sink = sink }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(t *TMS) { t.metrics = m }
}

func WithCommissionPct(pct decimal.Decimal) Option {
	return func(t *TMS) { t.CommissionPct = pct }
}

func New(logger *zap.Logger, opts ...Option) *TMS {
	t := &TMS{
		logger:    logger,
		sink:      eventlog.NoOp{},
		positions: make(map[string]*position.Position),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func posKey(strategyID, symbol string) string {
	return strategyID + "\x00" + symbol
}

// GetPosition returns the current position for (strategyID, symbol),
// or nil if none exists yet. The returned pointer is the TMS's own
// live state; callers must not mutate it.
func (t *TMS) GetPosition(strategyID, symbol string) *position.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positions[posKey(strategyID, symbol)]
}

// OpenPositions returns every non-flat position owned by strategyID.
func (t *TMS) OpenPositions(strategyID string) []*position.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*position.Position
	prefix := strategyID + "\x00"
	for key, p := range t.positions {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && !p.IsClosed() {
			out = append(out, p)
		}
	}
	return out
}

// ExecuteTrade fills each instruction in order, updates the owning
// position, and appends the resulting trade to every ledger in
// ledgerChain (expected: strategy, portfolio, fund, account — whichever
// exist, in that order, per §4.5 step 3 and the §8 ledger-cascade
// property). It holds the TMS mutex for its entire duration, per
// spec.md §5.
//
// All instructions here have already passed OMS validation; a
// per-instruction failure (none are expected in the synchronous
// simulated-fill model) would be fatal to engine consistency per
// spec.md §7, so none of the steps below can partially fail.
func (t *TMS) ExecuteTrade(instructions []trade.Instruction, ledgerChain []*ledger.Ledger) ([]*trade.Trade, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	trades := make([]*trade.Trade, 0, len(instructions))

	for _, instr := range instructions {
		tr := trade.NewPending(instr.StrategyID, instr.Symbol, instr.Direction, instr.OrderType, instr.Quantity, nil, instr.StopPrice, instr.BackDate)
		commission := instr.Quantity.Mul(instr.Price).Mul(t.CommissionPct)
		tr.Fill(instr.Price, commission)

		key := posKey(instr.StrategyID, instr.Symbol)
		pos, ok := t.positions[key]
		if !ok {
			pos = position.New(instr.StrategyID, instr.Symbol)
			t.positions[key] = pos
		}
		pos.Apply(tr)

		for _, l := range ledgerChain {
			if l != nil {
				l.Record(tr)
				if t.metrics != nil {
					t.metrics.LedgerSize.WithLabelValues(l.OwnerName).Set(float64(l.Count()))
				}
			}
		}

		trades = append(trades, tr)

		if t.metrics != nil {
			t.metrics.TradesFilled.WithLabelValues(instr.StrategyID, instr.Symbol, string(instr.Direction)).Inc()
		}
		t.sink.Publish(eventlog.Event{
			Kind:       "trade_executed",
			StrategyID: instr.StrategyID,
			Symbol:     instr.Symbol,
			Detail:     fmt.Sprintf("%s %s @ %s", instr.Direction, instr.Quantity.String(), instr.Price.String()),
			At:         time.Now(),
		})
	}

	if t.metrics != nil {
		t.metrics.ObserveLatency(start)
	}
	if t.logger != nil {
		t.logger.Debug("trade batch executed", zap.Int("count", len(trades)))
	}

	return trades, nil
}
