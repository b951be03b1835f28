package hierarchy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCapitalInvariant_CashNeverNegative(t *testing.T) {
	logger := zap.NewNop()
	account := NewAccount("a1", "account", decimal.NewFromInt(100_000), logger)

	_, err := account.CreateFund("f1", "fund", decimal.NewFromInt(200_000))
	require.Error(t, err)
	assert.True(t, account.Cash().GreaterThanOrEqual(decimal.Zero))

	fund, err := account.CreateFund("f2", "fund2", decimal.NewFromInt(50_000))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50_000).Equal(account.Cash()))
	assert.True(t, decimal.NewFromInt(50_000).Equal(fund.Capital))
}

func TestOMSTMSOwnership_InheritedDownTheChain(t *testing.T) {
	logger := zap.NewNop()
	account := NewAccount("a1", "account", decimal.NewFromInt(1_000_000), logger)
	require.True(t, account.IsOMSTMSOwner())

	fund, err := account.CreateFund("f1", "fund", decimal.NewFromInt(500_000))
	require.NoError(t, err)
	require.False(t, fund.IsOMSTMSOwner())

	portfolio, err := fund.CreatePortfolio("p1", "portfolio", decimal.NewFromInt(200_000))
	require.NoError(t, err)
	require.False(t, portfolio.IsOMSTMSOwner())

	strategy, err := portfolio.CreateStrategy("s1", "strategy", decimal.NewFromInt(100_000))
	require.NoError(t, err)
	require.False(t, strategy.IsOMSTMSOwner())

	assert.Same(t, account.sys, fund.sys)
	assert.Same(t, fund.sys, portfolio.sys)
	assert.Same(t, portfolio.sys, strategy.sys)
}

func TestStandaloneStrategy_IsOwnOwner(t *testing.T) {
	logger := zap.NewNop()
	strategy := NewStrategy("s1", "standalone", decimal.NewFromInt(100_000), nil, logger)
	assert.True(t, strategy.IsOMSTMSOwner())
}

func TestRenameFund_RekeysAtomically(t *testing.T) {
	logger := zap.NewNop()
	account := NewAccount("a1", "account", decimal.NewFromInt(1_000_000), logger)
	fund, err := account.CreateFund("f1", "old-name", decimal.NewFromInt(100_000))
	require.NoError(t, err)

	account.RenameFund("f1", "old-name", "f1", "new-name", fund)

	_, ok := account.GetFundByKey("f1", "old-name")
	assert.False(t, ok)
	found, ok := account.GetFundByKey("f1", "new-name")
	assert.True(t, ok)
	assert.Same(t, fund, found)
}
