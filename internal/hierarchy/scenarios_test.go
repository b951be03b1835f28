package hierarchy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/tradeerrs"
	"github.com/b25/tradingcore/internal/trade"
)

// ScenarioTestSuite runs the seed end-to-end scenarios from spec.md
// §8, S1-S6, each against a fresh four-level hierarchy.
type ScenarioTestSuite struct {
	suite.Suite
	logger *zap.Logger
}

func (s *ScenarioTestSuite) SetupSuite() {
	s.logger = zap.NewNop()
}

func (s *ScenarioTestSuite) newFullHierarchy(accountCapital, fundCapital, portfolioCapital, strategyCapital int64) (*Account, *Fund, *Portfolio, *Strategy) {
	account := NewAccount("acct-1", "account", decimal.NewFromInt(accountCapital), s.logger)
	fund, err := account.CreateFund("fund-1", "fund", decimal.NewFromInt(fundCapital))
	require.NoError(s.T(), err)
	portfolio, err := fund.CreatePortfolio("port-1", "portfolio", decimal.NewFromInt(portfolioCapital))
	require.NoError(s.T(), err)
	strategy, err := portfolio.CreateStrategy("strat-1", "strategy", decimal.NewFromInt(strategyCapital))
	require.NoError(s.T(), err)
	return account, fund, portfolio, strategy
}

// S1: flat -> long -> close.
func (s *ScenarioTestSuite) TestS1_FlatLongClose() {
	_, _, _, strategy := s.newFullHierarchy(1_000_000, 1_000_000, 1_000_000, 100_000)

	_, _, err := strategy.PlaceOrder("AAPL", oms.ActionBuy, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(150), nil, time.Time{})
	require.NoError(s.T(), err)
	_, _, err = strategy.PlaceOrder("AAPL", oms.ActionSell, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(165), nil, time.Time{})
	require.NoError(s.T(), err)

	pos := strategy.Position("AAPL")
	s.Require().NotNil(pos)
	s.True(pos.IsClosed())
	s.True(decimal.NewFromInt(150).Equal(pos.RealizedPnL))

	cash := strategy.CashBalance(map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(999)})
	s.True(decimal.NewFromInt(100_000).Equal(cash), "flat position contributes nothing to the cost-basis deduction")
}

// S2: long -> short via split sell.
func (s *ScenarioTestSuite) TestS2_LongToShortViaSplit() {
	_, _, _, strategy := s.newFullHierarchy(1_000_000, 1_000_000, 1_000_000, 100_000)

	_, _, err := strategy.PlaceOrder("MSFT", oms.ActionBuy, decimal.NewFromInt(5), trade.Market, decimal.NewFromInt(100), nil, time.Time{})
	require.NoError(s.T(), err)

	_, trades, err := strategy.PlaceOrder("MSFT", oms.ActionSell, decimal.NewFromInt(8), trade.Market, decimal.NewFromInt(120), nil, time.Time{})
	require.NoError(s.T(), err)
	s.Require().Len(trades, 2)

	pos := strategy.Position("MSFT")
	s.True(decimal.NewFromInt(-3).Equal(pos.Quantity))
	s.True(decimal.NewFromInt(120).Equal(pos.AvgEntry))
	s.True(decimal.NewFromInt(100).Equal(pos.RealizedPnL))
}

// S3: short -> long via split buy.
func (s *ScenarioTestSuite) TestS3_ShortToLongViaSplit() {
	_, _, _, strategy := s.newFullHierarchy(1_000_000, 1_000_000, 1_000_000, 100_000)

	_, _, err := strategy.PlaceOrder("GOOGL", oms.ActionSell, decimal.NewFromInt(4), trade.Market, decimal.NewFromInt(100), nil, time.Time{})
	require.NoError(s.T(), err)

	_, trades, err := strategy.PlaceOrder("GOOGL", oms.ActionBuy, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(90), nil, time.Time{})
	require.NoError(s.T(), err)
	s.Require().Len(trades, 2)

	pos := strategy.Position("GOOGL")
	s.True(decimal.NewFromInt(6).Equal(pos.Quantity))
	s.True(decimal.NewFromInt(90).Equal(pos.AvgEntry))
}

// S4: rule rejection on max single-trade pct.
func (s *ScenarioTestSuite) TestS4_RuleRejection() {
	_, _, portfolio, strategy := s.newFullHierarchy(10_000_000, 10_000_000, 1_000_000, 500_000)
	portfolio.Rules.MaxSingleTradePct = decimal.NewFromInt(5)

	_, _, err := strategy.PlaceOrder("TSLA", oms.ActionBuy, decimal.NewFromInt(400), trade.Market, decimal.NewFromInt(200), nil, time.Time{})
	s.Require().Error(err)
	var rv *tradeerrs.RuleViolationError
	s.ErrorAs(err, &rv)

	s.Equal(1, len(strategy.Ledger().Rejections))
	s.Equal(0, strategy.Ledger().Count())
}

// S5: insufficient funds.
func (s *ScenarioTestSuite) TestS5_InsufficientFunds() {
	_, _, _, strategy := s.newFullHierarchy(1_000_000, 1_000_000, 1_000_000, 10_000)

	_, _, err := strategy.PlaceOrder("AAPL", oms.ActionBuy, decimal.NewFromInt(100), trade.Market, decimal.NewFromInt(150), nil, time.Time{})
	s.Require().Error(err)
	var ife *tradeerrs.InsufficientFundsError
	s.ErrorAs(err, &ife)
}

// S6: ledger cascade across all four levels.
func (s *ScenarioTestSuite) TestS6_LedgerCascade() {
	account, fund, portfolio, strategy := s.newFullHierarchy(1_000_000, 1_000_000, 1_000_000, 100_000)

	_, _, err := strategy.PlaceOrder("AAPL", oms.ActionBuy, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(150), nil, time.Time{})
	require.NoError(s.T(), err)

	s.Equal(1, strategy.Ledger().Count())
	s.Equal(1, portfolio.Ledger().Count())
	s.Equal(1, fund.Ledger().Count())
	s.Equal(1, account.Ledger().Count())
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioTestSuite))
}
