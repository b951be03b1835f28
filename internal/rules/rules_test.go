package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/b25/tradingcore/internal/trade"
)

func TestAggregate_BooleanIsAND(t *testing.T) {
	permissive := Default()
	restrictive := Default()
	restrictive.AllowShortSelling = false

	agg := Aggregate(permissive, restrictive)
	assert.False(t, agg.AllowShortSelling)
}

func TestAggregate_PercentagesAreMIN(t *testing.T) {
	a := Default()
	a.MaxSingleTradePct = decimal.NewFromInt(10)
	b := Default()
	b.MaxSingleTradePct = decimal.NewFromInt(5)

	agg := Aggregate(a, b)
	assert.True(t, decimal.NewFromInt(5).Equal(agg.MaxSingleTradePct))
}

func TestAggregate_DirectionsAreIntersected(t *testing.T) {
	a := Default()
	a.AllowedDirections = map[trade.Direction]bool{trade.Buy: true, trade.Sell: true}
	b := Default()
	b.AllowedDirections = map[trade.Direction]bool{trade.Sell: true, trade.SellShort: true}

	agg := Aggregate(a, b)
	assert.True(t, agg.AllowedDirections[trade.Sell])
	assert.False(t, agg.AllowedDirections[trade.Buy])
	assert.False(t, agg.AllowedDirections[trade.SellShort])
}

func TestAggregate_BlacklistIsUnion(t *testing.T) {
	a := Default()
	a.Blacklist = map[string]bool{"TSLA": true}
	b := Default()
	b.Blacklist = map[string]bool{"GME": true}

	agg := Aggregate(a, b)
	assert.False(t, agg.SymbolAllowed("TSLA"))
	assert.False(t, agg.SymbolAllowed("GME"))
	assert.True(t, agg.SymbolAllowed("AAPL"))
}

func TestAggregate_WhitelistIsIntersected(t *testing.T) {
	a := Default()
	a.Whitelist = map[string]bool{"AAPL": true, "MSFT": true}
	b := Default()
	b.Whitelist = map[string]bool{"MSFT": true, "GOOGL": true}

	agg := Aggregate(a, b)
	assert.False(t, agg.SymbolAllowed("AAPL"))
	assert.True(t, agg.SymbolAllowed("MSFT"))
	assert.False(t, agg.SymbolAllowed("GOOGL"))
}

func TestAggregate_NoLevelsIsPermissiveDefault(t *testing.T) {
	agg := Aggregate()
	assert.True(t, agg.SymbolAllowed("ANY"))
	assert.True(t, agg.AllowShortSelling)
}
