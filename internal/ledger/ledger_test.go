package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b25/tradingcore/internal/trade"
)

func filledTrade(symbol string, dir trade.Direction, qty, price int64) *trade.Trade {
	tr := trade.NewPending("strat-1", symbol, dir, trade.Market, decimal.NewFromInt(qty), nil, nil, time.Time{})
	tr.Fill(decimal.NewFromInt(price), decimal.NewFromInt(1))
	return tr
}

func TestRecordAndIndices(t *testing.T) {
	l := New("demo", "strategy")

	l.Record(filledTrade("AAPL", trade.Buy, 10, 150))
	l.Record(filledTrade("MSFT", trade.SellShort, 5, 200))

	require.Equal(t, 2, l.Count())
	assert.Len(t, l.BySymbol("AAPL"), 1)
	assert.Len(t, l.ByDirection(trade.SellShort), 1)
	assert.Len(t, l.ByStatus(trade.Filled), 2)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, l.Symbols())
}

func TestTotalVolumeAndCommission(t *testing.T) {
	l := New("demo", "strategy")
	l.Record(filledTrade("AAPL", trade.Buy, 10, 150))
	l.Record(filledTrade("AAPL", trade.Sell, 10, 160))

	assert.True(t, decimal.NewFromInt(3100).Equal(l.TotalVolume("AAPL")))
	assert.True(t, decimal.NewFromInt(2).Equal(l.TotalCommission()))
}

func TestRecordRejection(t *testing.T) {
	l := New("demo", "strategy")
	l.RecordRejection("TSLA", "max single trade pct exceeded")

	require.Len(t, l.Rejections, 1)
	assert.Equal(t, "TSLA", l.Rejections[0].Symbol)
	assert.Equal(t, 0, l.Count(), "rejections must not appear in the trade log")
}

func TestBuyVsSellRatio(t *testing.T) {
	l := New("demo", "strategy")
	assert.Equal(t, 0.0, l.BuyVsSellRatio())

	l.Record(filledTrade("AAPL", trade.Buy, 10, 150))
	assert.True(t, math.IsInf(l.BuyVsSellRatio(), 1), "no sell-side fills with at least one buy yields +Inf")
}
