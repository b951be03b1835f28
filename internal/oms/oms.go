// Package oms implements the Order Management core: intent-to-
// instruction translation, instruction validation against an
// aggregated rule set, and the cash sufficiency check (spec.md
// §4.2-§4.4), grounded on core/order_management.py's
// OrderManagementSystem plus the multi-stage validation shape of
// order-execution/internal/validator/validator.go.
package oms

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/b25/tradingcore/internal/eventlog"
	"github.com/b25/tradingcore/internal/position"
	"github.com/b25/tradingcore/internal/rules"
	"github.com/b25/tradingcore/internal/telemetry"
	"github.com/b25/tradingcore/internal/trade"
	"github.com/b25/tradingcore/internal/tradeerrs"
)

// Action is the caller-facing unsigned intent (spec.md §6).
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Order is the validated, not-yet-executed result of CreateOrder: the
// aggregated instruction set the TMS will be asked to execute.
type Order struct {
	StrategyID   string
	Symbol       string
	Action       Action
	Quantity     decimal.Decimal
	Instructions []trade.Instruction
}

// OMS translates intents into signed instructions, validates them
// against a caller-aggregated rule set, and checks cash sufficiency. It holds no position or
// ledger state of its own — that lives in the TMS and the hierarchy
// containers respectively — so one OMS can safely be the lazy-shared
// owner for an entire connected subtree.
type OMS struct {
	logger  *zap.Logger
	metrics *telemetry.Metrics
	sink    eventlog.Sink
	limiter *rate.Limiter // nil means unlimited
}

// Option configures an OMS at construction time.
type Option func(*OMS)

// WithEventSink installs a structured event sink; default is a no-op.
func WithEventSink(sink eventlog.Sink) Option {
	return func(o *OMS) { o.sink = sink }
}

// WithRateLimiter installs an optional submission-rate limiter on
// CreateOrder; default is unlimited.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *OMS) { o.limiter = limiter }
}

// WithMetrics installs a telemetry.Metrics bundle; default is nil
// (no metrics recorded).
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *OMS) { o.metrics = m }
}

func New(logger *zap.Logger, opts ...Option) *OMS {
	o := &OMS{logger: logger, sink: eventlog.NoOp{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateOrder takes the rule set the caller has already aggregated,
// translates the (action, quantity) intent into one or two signed
// instructions per
// §4.2's table, validates each against the aggregated rules (§4.3),
// and checks cash sufficiency (§4.4). On success it returns the
// validated Order; the caller (the strategy, via the TMS) still has to
// execute it.
//
// ownerPortfolioCapital is nil for a standalone strategy (no portfolio
// above it), which skips validation rules 4 and 5 per §4.3.
func (o *OMS) CreateOrder(
	strategyID, symbol string,
	action Action,
	qty decimal.Decimal,
	orderType trade.Type,
	price decimal.Decimal,
	stopPrice *decimal.Decimal,
	backDate time.Time,
	agg rules.Aggregated,
	currentPos *position.Position,
	availableCash decimal.Decimal,
	ownerPortfolioCapital *decimal.Decimal,
) (*Order, error) {
	if o.limiter != nil && !o.limiter.Allow() {
		return nil, tradeerrs.NewBadArgument("rate_limit", "order submission rate exceeded")
	}

	if action != ActionBuy && action != ActionSell {
		return nil, tradeerrs.NewBadArgument("action", fmt.Sprintf("must be BUY or SELL, got %q", action))
	}
	if qty.Sign() <= 0 {
		return nil, tradeerrs.NewBadArgument("quantity", "must be strictly positive")
	}
	if price.Sign() <= 0 {
		return nil, tradeerrs.NewBadArgument("price", "must be strictly positive")
	}

	currentQty := decimal.Zero
	if currentPos != nil {
		currentQty = currentPos.Quantity
	}

	instructions, err := translate(strategyID, symbol, action, qty, orderType, price, stopPrice, backDate, currentQty, agg.AllowShortSelling)
	if err != nil {
		o.reject(strategyID, symbol, err)
		return nil, err
	}

	for _, instr := range instructions {
		if err := o.validateInstruction(instr, agg, ownerPortfolioCapital, currentQty); err != nil {
			o.reject(strategyID, symbol, err)
			return nil, err
		}
		// Each split leg mutates the running quantity the next leg's
		// position-size check must account for.
		if instr.Direction.IsBuySide() {
			currentQty = currentQty.Add(instr.Quantity)
		} else {
			currentQty = currentQty.Sub(instr.Quantity)
		}
	}

	if err := checkCashSufficiency(instructions, availableCash); err != nil {
		o.reject(strategyID, symbol, err)
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.OrdersCreated.WithLabelValues(strategyID).Inc()
	}
	o.sink.Publish(eventlog.Event{Kind: "order_created", StrategyID: strategyID, Symbol: symbol, Detail: string(action), At: time.Now()})

	return &Order{StrategyID: strategyID, Symbol: symbol, Action: action, Quantity: qty, Instructions: instructions}, nil
}

func (o *OMS) reject(strategyID, symbol string, err error) {
	reason := "unknown"
	switch err.(type) {
	case *tradeerrs.RuleViolationError:
		reason = "rule_violation"
	case *tradeerrs.InsufficientFundsError:
		reason = "insufficient_funds"
	case *tradeerrs.BadArgumentError:
		reason = "bad_argument"
	}
	if o.metrics != nil {
		o.metrics.OrdersRejected.WithLabelValues(strategyID, reason).Inc()
		if rv, ok := err.(*tradeerrs.RuleViolationError); ok {
			o.metrics.RuleViolations.WithLabelValues(rv.Rule).Inc()
		}
	}
	o.sink.Publish(eventlog.Event{Kind: "order_rejected", StrategyID: strategyID, Symbol: symbol, Detail: err.Error(), At: time.Now()})
	if o.logger != nil {
		o.logger.Info("order rejected", zap.String("strategy", strategyID), zap.String("symbol", symbol), zap.Error(err))
	}
}

// translate implements the §4.2 intent-to-instruction table.
func translate(
	strategyID, symbol string,
	action Action,
	qty decimal.Decimal,
	orderType trade.Type,
	price decimal.Decimal,
	stopPrice *decimal.Decimal,
	backDate time.Time,
	q decimal.Decimal,
	shortAllowed bool,
) ([]trade.Instruction, error) {
	mk := func(dir trade.Direction, amount decimal.Decimal, reason string) trade.Instruction {
		return trade.Instruction{
			StrategyID: strategyID,
			Symbol:     symbol,
			Direction:  dir,
			Quantity:   amount,
			OrderType:  orderType,
			Price:      price,
			StopPrice:  stopPrice,
			Reason:     reason,
			BackDate:   backDate,
		}
	}

	absQ := q.Abs()

	switch action {
	case ActionBuy:
		if q.Sign() >= 0 {
			return []trade.Instruction{mk(trade.Buy, qty, "buy, no short to cover")}, nil
		}
		if qty.LessThanOrEqual(absQ) {
			return []trade.Instruction{mk(trade.BuyToCover, qty, "buy to cover short")}, nil
		}
		return []trade.Instruction{
			mk(trade.BuyToCover, absQ, "buy to cover short, remainder opens long"),
			mk(trade.Buy, qty.Sub(absQ), "buy, remainder after covering short"),
		}, nil

	case ActionSell:
		if q.Sign() > 0 {
			if qty.LessThanOrEqual(q) {
				return []trade.Instruction{mk(trade.Sell, qty, "sell against long")}, nil
			}
			if !shortAllowed {
				return nil, tradeerrs.NewRuleViolation("allow_short_selling", symbol, "sell quantity exceeds long position and short selling is not permitted")
			}
			return []trade.Instruction{
				mk(trade.Sell, q, "sell full long position"),
				mk(trade.SellShort, qty.Sub(q), "sell short, remainder after closing long"),
			}, nil
		}
		if q.Sign() < 0 {
			return []trade.Instruction{mk(trade.SellShort, qty, "sell short, adding to short")}, nil
		}
		if !shortAllowed {
			return nil, tradeerrs.NewRuleViolation("allow_short_selling", symbol, "short selling is not permitted")
		}
		return []trade.Instruction{mk(trade.SellShort, qty, "sell short from flat")}, nil
	}

	return nil, tradeerrs.NewBadArgument("action", "unreachable")
}

// validateInstruction implements the §4.3 checks in order.
func (o *OMS) validateInstruction(instr trade.Instruction, agg rules.Aggregated, ownerPortfolioCapital *decimal.Decimal, currentQty decimal.Decimal) error {
	if !agg.AllowedDirections[instr.Direction] {
		return tradeerrs.NewRuleViolation("allowed_directions", instr.Symbol, fmt.Sprintf("direction %s not permitted", instr.Direction))
	}
	if !agg.AllowedOrderTypes[instr.OrderType] {
		return tradeerrs.NewRuleViolation("allowed_order_types", instr.Symbol, fmt.Sprintf("order type %s not permitted", instr.OrderType))
	}
	if !agg.SymbolAllowed(instr.Symbol) {
		return tradeerrs.NewRuleViolation("symbol_restriction", instr.Symbol, "symbol is blacklisted or not in whitelist")
	}

	if ownerPortfolioCapital == nil || ownerPortfolioCapital.IsZero() {
		return nil
	}

	tradeValue := instr.Quantity.Mul(instr.Price)
	tradePct := tradeValue.Div(*ownerPortfolioCapital).Mul(decimal.NewFromInt(100))
	if tradePct.GreaterThan(agg.MaxSingleTradePct) {
		return tradeerrs.NewRuleViolation("max_single_trade_pct", instr.Symbol, fmt.Sprintf("trade %.4f%% of portfolio capital exceeds max %.4f%%", tradePct.InexactFloat64(), agg.MaxSingleTradePct.InexactFloat64()))
	}

	resultingQty := currentQty
	if instr.Direction.IsBuySide() {
		resultingQty = resultingQty.Add(instr.Quantity)
	} else {
		resultingQty = resultingQty.Sub(instr.Quantity)
	}
	positionValue := resultingQty.Abs().Mul(instr.Price)
	positionPct := positionValue.Div(*ownerPortfolioCapital).Mul(decimal.NewFromInt(100))
	if positionPct.GreaterThan(agg.MaxPositionPct) {
		return tradeerrs.NewRuleViolation("max_position_pct", instr.Symbol, fmt.Sprintf("resulting position %.4f%% of portfolio capital exceeds max %.4f%%", positionPct.InexactFloat64(), agg.MaxPositionPct.InexactFloat64()))
	}

	return nil
}

// checkCashSufficiency implements §4.4: only BUY/BUY_TO_COVER
// instructions consume cash at this check.
func checkCashSufficiency(instructions []trade.Instruction, availableCash decimal.Decimal) error {
	required := decimal.Zero
	for _, instr := range instructions {
		if instr.Direction.IsBuySide() {
			required = required.Add(instr.Quantity.Mul(instr.Price))
		}
	}
	if required.GreaterThan(availableCash) {
		return tradeerrs.NewInsufficientFunds(required, availableCash)
	}
	return nil
}
