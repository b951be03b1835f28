package quote

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	price decimal.Decimal
	ok    bool
}

func (f fakeSource) Price(symbol string) (decimal.Decimal, bool) { return f.price, f.ok }

func TestGuarded_PassesThroughOnSuccess(t *testing.T) {
	g := NewGuarded("test", fakeSource{price: decimal.NewFromInt(150), ok: true})
	price, ok := g.Price("AAPL")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(150).Equal(price))
}

func TestGuarded_TripsAfterConsecutiveFailures(t *testing.T) {
	g := NewGuarded("test", fakeSource{ok: false})
	for i := 0; i < 5; i++ {
		_, ok := g.Price("AAPL")
		assert.False(t, ok)
	}
	// breaker should now be open; further calls fail fast without
	// reaching the inner source.
	assert.Equal(t, gobreaker.StateOpen, g.breaker.State())
	_, ok := g.Price("AAPL")
	assert.False(t, ok)
}
