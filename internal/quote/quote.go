// Package quote defines the price-quote collaborator interface
// (spec.md §6) and a circuit-breaker-guarded adapter around it,
// grounded on order-execution/internal/executor/executor.go's
// gobreaker-wrapped exchange call.
package quote

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// Source is a consumer-supplied mapping from symbol to a positive
// price. The engine core never fetches prices itself; this interface
// exists only for callers who want to wrap an external feed with the
// same resilience pattern the teacher uses for exchange calls.
type Source interface {
	Price(symbol string) (decimal.Decimal, bool)
}

// ErrSourceUnavailable is the failure Guarded records with its breaker
// when the underlying source has no price. Guarded.Price reports it,
// and an open breaker, to its caller as ok=false.
var ErrSourceUnavailable = errors.New("quote: source unavailable")

// Guarded wraps a Source in a gobreaker.CircuitBreaker so a quote
// source that keeps failing trips open and later calls fail fast.
// Calls are not timed out: a slow source still blocks the caller.
// Once open, callers should fall back to the
// conservative average-entry-price estimate per spec.md §4.6.
type Guarded struct {
	inner   Source
	breaker *gobreaker.CircuitBreaker
}

// NewGuarded wraps src with a breaker named name that trips after 5
// consecutive failures; every other setting is gobreaker's default
// (including the 60s open-state timeout before a half-open retry).
func NewGuarded(name string, src Source) *Guarded {
	return &Guarded{
		inner: src,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: name,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (g *Guarded) Price(symbol string) (decimal.Decimal, bool) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		price, ok := g.inner.Price(symbol)
		if !ok {
			return decimal.Zero, ErrSourceUnavailable
		}
		return price, nil
	})
	if err != nil {
		return decimal.Zero, false
	}
	return result.(decimal.Decimal), true
}

var _ Source = (*Guarded)(nil)
