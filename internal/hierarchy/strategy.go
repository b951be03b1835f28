package hierarchy

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/perf"
	"github.com/b25/tradingcore/internal/position"
	"github.com/b25/tradingcore/internal/rules"
	"github.com/b25/tradingcore/internal/trade"
)

// Strategy is the leaf of the hierarchy: it owns Positions (held by
// the shared TMS, keyed by its ID) and is the entry point for
// place_order / place_trade, grounded on core/strategy.py's Strategy.
type Strategy struct {
	ID      string
	Name    string
	Capital decimal.Decimal
	Rules   rules.Policy

	// Portfolio is the parent, nil for a standalone Strategy.
	Portfolio *Portfolio

	ledger *ledger.Ledger
	sys    *systems
	owner  bool
	logger *zap.Logger
}

func newStrategy(id, name string, capital decimal.Decimal, portfolio *Portfolio, logger *zap.Logger) *Strategy {
	s := &Strategy{
		ID:        id,
		Name:      name,
		Capital:   capital,
		Rules:     rules.Default(),
		Portfolio: portfolio,
		ledger:    ledger.New(name, "strategy"),
		logger:    logger,
	}
	var parentSys *systems
	if portfolio != nil {
		parentSys = portfolio.sys
	}
	s.sys, s.owner = initOrInheritSystems(parentSys, logger, nil, nil)
	return s
}

// NewStrategy creates a Strategy. When portfolio is non-nil it
// auto-registers under it (per spec.md §6) and inherits the
// portfolio's shared OMS/TMS; otherwise it is standalone and becomes
// its own subtree's OMS/TMS owner.
func NewStrategy(id, name string, capital decimal.Decimal, portfolio *Portfolio, logger *zap.Logger) *Strategy {
	s := newStrategy(id, name, capital, portfolio, logger)
	if portfolio != nil {
		portfolio.strategies.put(id, name, s)
	}
	return s
}

func (s *Strategy) Ledger() *ledger.Ledger { return s.ledger }

func (s *Strategy) IsOMSTMSOwner() bool { return s.owner }

// OpenPositions returns every non-flat position this strategy
// currently holds.
func (s *Strategy) OpenPositions() []*position.Position {
	return s.sys.tms.OpenPositions(s.ID)
}

// Position returns the current position for symbol, or nil if none
// exists yet.
func (s *Strategy) Position(symbol string) *position.Position {
	return s.sys.tms.GetPosition(s.ID, symbol)
}

// CashBalance implements §4.6: capital minus the cost of every open
// position, valued at the supplied prices (or, for any symbol absent
// from prices — including when prices is nil — at that position's
// average entry price, the conservative fallback).
func (s *Strategy) CashBalance(prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range s.sys.tms.OpenPositions(s.ID) {
		price := pos.AvgEntry
		if prices != nil {
			if p, ok := prices[pos.Symbol]; ok {
				price = p
			}
		}
		total = total.Add(pos.Quantity.Abs().Mul(price))
	}
	return s.Capital.Sub(total)
}

// ledgerChain returns this strategy's ledger plus every ancestor's
// ledger that exists, in cascade order, per §4.5 step 3.
func (s *Strategy) ledgerChain() []*ledger.Ledger {
	chain := []*ledger.Ledger{s.ledger}
	p := s.Portfolio
	if p == nil {
		return chain
	}
	chain = append(chain, p.ledger)
	f := p.Fund
	if f == nil {
		return chain
	}
	chain = append(chain, f.ledger)
	a := f.Account
	if a == nil {
		return chain
	}
	chain = append(chain, a.ledger)
	return chain
}

// aggregatedRules walks portfolio -> fund -> account per §4.1 and
// merges their policies; a standalone strategy (no portfolio) is
// governed only by Default().
func (s *Strategy) aggregatedRules() (rules.Aggregated, *decimal.Decimal) {
	var levels []rules.Policy
	var ownerCapital *decimal.Decimal

	if s.Portfolio != nil {
		levels = append(levels, s.Portfolio.Rules)
		cap := s.Portfolio.Capital
		ownerCapital = &cap
		if s.Portfolio.Fund != nil {
			levels = append(levels, s.Portfolio.Fund.Rules)
			if s.Portfolio.Fund.Account != nil {
				levels = append(levels, s.Portfolio.Fund.Account.Rules)
			}
		}
	}

	return rules.Aggregate(levels...), ownerCapital
}

// PlaceOrder is the primary entry point (spec.md §6): it aggregates
// rules, asks the OMS to translate and validate the BUY/SELL intent
// into signed instructions, then asks the TMS to execute them and
// cascade the resulting trades up the ledger chain.
func (s *Strategy) PlaceOrder(
	symbol string,
	action oms.Action,
	qty decimal.Decimal,
	orderType trade.Type,
	price decimal.Decimal,
	stopPrice *decimal.Decimal,
	backDate time.Time,
) (*oms.Order, []*trade.Trade, error) {
	agg, ownerCapital := s.aggregatedRules()
	currentPos := s.sys.tms.GetPosition(s.ID, symbol)
	cash := s.CashBalance(nil) // conservative, per §4.6

	order, err := s.sys.oms.CreateOrder(s.ID, symbol, action, qty, orderType, price, stopPrice, backDate, agg, currentPos, cash, ownerCapital)
	if err != nil {
		s.ledger.RecordRejection(symbol, err.Error())
		return nil, nil, err
	}

	trades, err := s.sys.tms.ExecuteTrade(order.Instructions, s.ledgerChain())
	if err != nil {
		return order, nil, err
	}
	return order, trades, nil
}

// PlaceTrade is the legacy wrapper (spec.md §6): BUY/BUY_TO_COVER map
// to intent "BUY", SELL/SELL_SHORT map to intent "SELL"; it returns
// the first resulting trade.
func (s *Strategy) PlaceTrade(
	symbol string,
	direction trade.Direction,
	qty decimal.Decimal,
	orderType trade.Type,
	price decimal.Decimal,
	stopPrice *decimal.Decimal,
	backDate time.Time,
) (*trade.Trade, error) {
	action := oms.ActionSell
	if direction == trade.Buy || direction == trade.BuyToCover {
		action = oms.ActionBuy
	}
	_, trades, err := s.PlaceOrder(symbol, action, qty, orderType, price, stopPrice, backDate)
	if err != nil {
		return nil, err
	}
	return trades[0], nil
}

func (s *Strategy) PerformanceMetrics(prices map[string]decimal.Decimal, riskFreeRate decimal.Decimal) perf.Metrics {
	return perf.Compute(s.Name, "strategy", s.ledger, s.Capital, prices, riskFreeRate)
}
