package hierarchy

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/perf"
	"github.com/b25/tradingcore/internal/rules"
	"github.com/b25/tradingcore/internal/tms"
	"github.com/b25/tradingcore/internal/tradeerrs"
)

// Account is the top of the capital/policy/accounting hierarchy. It
// owns Funds and, since nothing sits above it, is always an OMS/TMS
// owner, grounded on core/account.py's TradeAccount.
type Account struct {
	ID     string
	Name   string
	Capital decimal.Decimal
	Rules  rules.Policy

	funds  *registry[*Fund]
	ledger *ledger.Ledger
	sys    *systems
	owner  bool
	logger *zap.Logger
}

// NewAccount creates a standalone account with a fresh OMS/TMS pair —
// an account is, by construction, never a descendant of anything else
// in this model, so it is always the subtree owner.
func NewAccount(id, name string, capital decimal.Decimal, logger *zap.Logger, opts ...AccountOption) *Account {
	a := &Account{
		ID:      id,
		Name:    name,
		Capital: capital,
		Rules:   rules.Default(),
		funds:   newRegistry[*Fund](),
		ledger:  ledger.New(name, "account"),
		logger:  logger,
	}
	cfg := accountConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	a.sys, a.owner = initOrInheritSystems(nil, logger, cfg.omsOpts, cfg.tmsOpts)
	return a
}

type accountConfig struct {
	omsOpts []oms.Option
	tmsOpts []tms.Option
}

// AccountOption configures the OMS/TMS pair an Account creates.
type AccountOption func(*accountConfig)

func WithOMSOptions(opts ...oms.Option) AccountOption {
	return func(c *accountConfig) { c.omsOpts = append(c.omsOpts, opts...) }
}

func WithTMSOptions(opts ...tms.Option) AccountOption {
	return func(c *accountConfig) { c.tmsOpts = append(c.tmsOpts, opts...) }
}

func (a *Account) Ledger() *ledger.Ledger { return a.ledger }

func (a *Account) IsOMSTMSOwner() bool { return a.owner }

// Allocated is the sum of every child fund's capital.
func (a *Account) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, f := range a.funds.all() {
		total = total.Add(f.Capital)
	}
	return total
}

// Cash is capital minus allocated; invariant cash >= 0 per spec.md §3.
func (a *Account) Cash() decimal.Decimal {
	return a.Capital.Sub(a.Allocated())
}

// CreateFund allocates a new Fund under this account, inheriting the
// account's shared OMS/TMS. Fails if capital exceeds the account's
// free cash.
func (a *Account) CreateFund(id, name string, capital decimal.Decimal) (*Fund, error) {
	if capital.GreaterThan(a.Cash()) {
		return nil, tradeerrs.NewInsufficientFunds(capital, a.Cash())
	}
	f := &Fund{
		ID:         id,
		Name:       name,
		Capital:    capital,
		Rules:      rules.Default(),
		Account:    a,
		portfolios: newRegistry[*Portfolio](),
		ledger:     ledger.New(name, "fund"),
		logger:     a.logger,
	}
	f.sys, f.owner = initOrInheritSystems(a.sys, a.logger, nil, nil)
	a.funds.put(id, name, f)
	return f, nil
}

func (a *Account) GetFund(id string) (*Fund, bool) {
	return a.funds.getByID(id, func(f *Fund) string { return f.ID })
}

func (a *Account) GetFundByKey(id, name string) (*Fund, bool) {
	return a.funds.getByKey(id, name)
}

func (a *Account) Funds() []*Fund { return a.funds.all() }

func (a *Account) RemoveFund(id, name string) { a.funds.remove(id, name) }

func (a *Account) RenameFund(oldID, oldName, newID, newName string, f *Fund) {
	f.ID, f.Name = newID, newName
	a.funds.rekey(oldID, oldName, newID, newName, f)
}

// PerformanceMetrics aggregates the ledger cascade: every fund,
// portfolio, and strategy trade under this account has already been
// recorded here by TMS.ExecuteTrade, so this is a direct computation
// over the account's own ledger.
func (a *Account) PerformanceMetrics(prices map[string]decimal.Decimal, riskFreeRate decimal.Decimal) perf.Metrics {
	return perf.Compute(a.Name, "account", a.ledger, a.Capital, prices, riskFreeRate)
}
