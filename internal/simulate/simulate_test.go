package simulate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/hierarchy"
	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/trade"
)

func buildHistory() []PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []PricePoint{
		{Time: base, Prices: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(100)}},
		{Time: base.AddDate(0, 0, 1), Prices: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(110)}},
		{Time: base.AddDate(0, 0, 2), Prices: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(120)}},
	}
}

func TestRun_BuyOnDayZeroThenHoldProducesIncreasingEquity(t *testing.T) {
	strategy := hierarchy.NewStrategy("s1", "buy-and-hold", decimal.NewFromInt(10000), nil, zap.NewNop())
	history := buildHistory()

	decide := func(day int, now time.Time, history []PricePoint, strategy *hierarchy.Strategy) []Intent {
		if day == 0 {
			return []Intent{{Symbol: "AAPL", Action: oms.ActionBuy, Quantity: decimal.NewFromInt(10), OrderType: trade.Market}}
		}
		return nil
	}

	sim := Simulator{}
	snapshots := sim.Run(strategy, history, decide)

	assert.Len(t, snapshots, 3)
	assert.True(t, snapshots[2].Equity.GreaterThan(snapshots[0].Equity))
}

func TestRun_SlippageWidensBuyFillPrice(t *testing.T) {
	sim := Simulator{SlippagePct: decimal.NewFromFloat(0.01)}
	buyPrice := sim.applySlippage(oms.ActionBuy, decimal.NewFromInt(100))
	sellPrice := sim.applySlippage(oms.ActionSell, decimal.NewFromInt(100))

	assert.True(t, buyPrice.GreaterThan(decimal.NewFromInt(100)))
	assert.True(t, sellPrice.LessThan(decimal.NewFromInt(100)))
}

func TestRun_DeciderNeverSeesFutureHistory(t *testing.T) {
	strategy := hierarchy.NewStrategy("s1", "lookahead-check", decimal.NewFromInt(10000), nil, zap.NewNop())
	history := buildHistory()

	var sawLengths []int
	decide := func(day int, now time.Time, history []PricePoint, strategy *hierarchy.Strategy) []Intent {
		sawLengths = append(sawLengths, len(history))
		return nil
	}

	sim := Simulator{}
	sim.Run(strategy, history, decide)

	assert.Equal(t, []int{1, 2, 3}, sawLengths)
}
