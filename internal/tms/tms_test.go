package tms

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/trade"
)

func instr(strategyID, symbol string, dir trade.Direction, qty, price int64) trade.Instruction {
	return trade.Instruction{
		StrategyID: strategyID,
		Symbol:     symbol,
		Direction:  dir,
		Quantity:   decimal.NewFromInt(qty),
		OrderType:  trade.Market,
		Price:      decimal.NewFromInt(price),
	}
}

func TestExecuteTrade_UpdatesPositionAndLedger(t *testing.T) {
	tm := New(zap.NewNop())
	l := ledger.New("strat-1", "strategy")

	trades, err := tm.ExecuteTrade([]trade.Instruction{instr("strat-1", "AAPL", trade.Buy, 10, 150)}, []*ledger.Ledger{l})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, trade.Filled, trades[0].Status)
	assert.Equal(t, 1, l.Count())

	pos := tm.GetPosition("strat-1", "AAPL")
	require.NotNil(t, pos)
	assert.True(t, decimal.NewFromInt(10).Equal(pos.Quantity))
}

func TestExecuteTrade_CascadesToMultipleLedgers(t *testing.T) {
	tm := New(zap.NewNop())
	strategyLedger := ledger.New("strat-1", "strategy")
	portfolioLedger := ledger.New("port-1", "portfolio")
	fundLedger := ledger.New("fund-1", "fund")
	accountLedger := ledger.New("acct-1", "account")

	chain := []*ledger.Ledger{strategyLedger, portfolioLedger, fundLedger, accountLedger}
	_, err := tm.ExecuteTrade([]trade.Instruction{instr("strat-1", "AAPL", trade.Buy, 10, 150)}, chain)
	require.NoError(t, err)

	for _, l := range chain {
		assert.Equal(t, 1, l.Count())
	}
}

func TestExecuteTrade_SplitInstructionsBothApply(t *testing.T) {
	tm := New(zap.NewNop())
	l := ledger.New("strat-1", "strategy")

	// Opens long 5 first.
	_, err := tm.ExecuteTrade([]trade.Instruction{instr("strat-1", "MSFT", trade.Buy, 5, 100)}, []*ledger.Ledger{l})
	require.NoError(t, err)

	// Then the split SELL 5 + SELL_SHORT 3 from scenario S2.
	trades, err := tm.ExecuteTrade([]trade.Instruction{
		instr("strat-1", "MSFT", trade.Sell, 5, 120),
		instr("strat-1", "MSFT", trade.SellShort, 3, 120),
	}, []*ledger.Ledger{l})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	pos := tm.GetPosition("strat-1", "MSFT")
	assert.True(t, decimal.NewFromInt(-3).Equal(pos.Quantity))
	assert.True(t, decimal.NewFromInt(120).Equal(pos.AvgEntry))
	assert.True(t, decimal.NewFromInt(100).Equal(pos.RealizedPnL))
}

func TestExecuteTrade_CommissionApplied(t *testing.T) {
	tm := New(zap.NewNop(), WithCommissionPct(decimal.NewFromFloat(0.001)))
	l := ledger.New("strat-1", "strategy")

	trades, err := tm.ExecuteTrade([]trade.Instruction{instr("strat-1", "AAPL", trade.Buy, 10, 150)}, []*ledger.Ledger{l})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(trades[0].Commission))
}

func TestExecuteTrade_BackDateOverridesTimestamps(t *testing.T) {
	tm := New(zap.NewNop())
	l := ledger.New("strat-1", "strategy")
	backDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	i := instr("strat-1", "AAPL", trade.Buy, 1, 100)
	i.BackDate = backDate
	trades, err := tm.ExecuteTrade([]trade.Instruction{i}, []*ledger.Ledger{l})
	require.NoError(t, err)
	assert.Equal(t, backDate, trades[0].FilledAt)
}
