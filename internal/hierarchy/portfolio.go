package hierarchy

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/perf"
	"github.com/b25/tradingcore/internal/rules"
	"github.com/b25/tradingcore/internal/tradeerrs"
)

// Portfolio owns Strategies. It is the "portfolio directly above the
// strategy" referenced throughout spec.md §4 — the level whose
// Capital gates the single-trade and position-size percentage checks.
type Portfolio struct {
	ID      string
	Name    string
	Capital decimal.Decimal
	Rules   rules.Policy

	// Fund is the parent, nil for a standalone Portfolio.
	Fund *Fund

	strategies *registry[*Strategy]
	ledger     *ledger.Ledger
	sys        *systems
	owner      bool
	logger     *zap.Logger
}

// NewStandalonePortfolio creates a Portfolio with no owning Fund,
// making it the OMS/TMS owner for its own subtree.
func NewStandalonePortfolio(id, name string, capital decimal.Decimal, logger *zap.Logger) *Portfolio {
	p := &Portfolio{
		ID:         id,
		Name:       name,
		Capital:    capital,
		Rules:      rules.Default(),
		strategies: newRegistry[*Strategy](),
		ledger:     ledger.New(name, "portfolio"),
		logger:     logger,
	}
	p.sys, p.owner = initOrInheritSystems(nil, logger, nil, nil)
	return p
}

func (p *Portfolio) Ledger() *ledger.Ledger { return p.ledger }

func (p *Portfolio) IsOMSTMSOwner() bool { return p.owner }

func (p *Portfolio) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.strategies.all() {
		total = total.Add(s.Capital)
	}
	return total
}

func (p *Portfolio) Cash() decimal.Decimal {
	return p.Capital.Sub(p.Allocated())
}

func (p *Portfolio) CreateStrategy(id, name string, capital decimal.Decimal) (*Strategy, error) {
	if capital.GreaterThan(p.Cash()) {
		return nil, tradeerrs.NewInsufficientFunds(capital, p.Cash())
	}
	s := newStrategy(id, name, capital, p, p.logger)
	p.strategies.put(id, name, s)
	return s, nil
}

func (p *Portfolio) GetStrategy(id string) (*Strategy, bool) {
	return p.strategies.getByID(id, func(s *Strategy) string { return s.ID })
}

func (p *Portfolio) GetStrategyByKey(id, name string) (*Strategy, bool) {
	return p.strategies.getByKey(id, name)
}

func (p *Portfolio) Strategies() []*Strategy { return p.strategies.all() }

func (p *Portfolio) RemoveStrategy(id, name string) { p.strategies.remove(id, name) }

func (p *Portfolio) PerformanceMetrics(prices map[string]decimal.Decimal, riskFreeRate decimal.Decimal) perf.Metrics {
	return perf.Compute(p.Name, "portfolio", p.ledger, p.Capital, prices, riskFreeRate)
}
