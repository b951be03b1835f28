package hierarchy

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/perf"
	"github.com/b25/tradingcore/internal/rules"
	"github.com/b25/tradingcore/internal/tradeerrs"
)

// Fund owns Portfolios. It may be standalone (Account is nil) or a
// child of an Account, per core/account.py's Fund container.
type Fund struct {
	ID      string
	Name    string
	Capital decimal.Decimal
	Rules   rules.Policy

	// Account is the parent, nil for a standalone Fund.
	Account *Account

	portfolios *registry[*Portfolio]
	ledger     *ledger.Ledger
	sys        *systems
	owner      bool
	logger     *zap.Logger
}

// NewStandaloneFund creates a Fund with no owning Account, making it
// the OMS/TMS owner for its own subtree.
func NewStandaloneFund(id, name string, capital decimal.Decimal, logger *zap.Logger) *Fund {
	f := &Fund{
		ID:         id,
		Name:       name,
		Capital:    capital,
		Rules:      rules.Default(),
		portfolios: newRegistry[*Portfolio](),
		ledger:     ledger.New(name, "fund"),
		logger:     logger,
	}
	f.sys, f.owner = initOrInheritSystems(nil, logger, nil, nil)
	return f
}

func (f *Fund) Ledger() *ledger.Ledger { return f.ledger }

func (f *Fund) IsOMSTMSOwner() bool { return f.owner }

func (f *Fund) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, p := range f.portfolios.all() {
		total = total.Add(p.Capital)
	}
	return total
}

func (f *Fund) Cash() decimal.Decimal {
	return f.Capital.Sub(f.Allocated())
}

func (f *Fund) CreatePortfolio(id, name string, capital decimal.Decimal) (*Portfolio, error) {
	if capital.GreaterThan(f.Cash()) {
		return nil, tradeerrs.NewInsufficientFunds(capital, f.Cash())
	}
	p := &Portfolio{
		ID:         id,
		Name:       name,
		Capital:    capital,
		Rules:      rules.Default(),
		Fund:       f,
		strategies: newRegistry[*Strategy](),
		ledger:     ledger.New(name, "portfolio"),
		logger:     f.logger,
	}
	p.sys, p.owner = initOrInheritSystems(f.sys, f.logger, nil, nil)
	f.portfolios.put(id, name, p)
	return p, nil
}

func (f *Fund) GetPortfolio(id string) (*Portfolio, bool) {
	return f.portfolios.getByID(id, func(p *Portfolio) string { return p.ID })
}

func (f *Fund) GetPortfolioByKey(id, name string) (*Portfolio, bool) {
	return f.portfolios.getByKey(id, name)
}

func (f *Fund) Portfolios() []*Portfolio { return f.portfolios.all() }

func (f *Fund) RemovePortfolio(id, name string) { f.portfolios.remove(id, name) }

func (f *Fund) PerformanceMetrics(prices map[string]decimal.Decimal, riskFreeRate decimal.Decimal) perf.Metrics {
	return perf.Compute(f.Name, "fund", f.ledger, f.Capital, prices, riskFreeRate)
}
