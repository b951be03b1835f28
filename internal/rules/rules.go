// Package rules implements the per-level trade-rule policy and its
// aggregation down the hierarchy (§3, §4.1), grounded on
// core/rules.py's TradeRules plus the combinator shape of
// risk-manager/internal/limits/policy.go's PolicyEngine.
package rules

import (
	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/trade"
)

// Policy is a per-level declarative trade-rule policy. Default()
// builds the permissive starting policy; the zero value permits no
// order type or direction and caps both percentages at 0.
type Policy struct {
	AllowedOrderTypes map[trade.Type]bool
	AllowedDirections map[trade.Direction]bool

	AllowShortSelling bool
	AllowMargin       bool
	AllowOptions      bool
	AllowFutures      bool

	MaxPositionPct   decimal.Decimal
	MaxSingleTradePct decimal.Decimal

	// Whitelist, when non-nil, is the exclusive set of permitted
	// symbols. A nil Whitelist means all symbols are permitted.
	Whitelist map[string]bool
	Blacklist map[string]bool
}

// Default returns the permissive defaults described in spec.md §3:
// all order types, BUY/SELL/SELL_SHORT/BUY_TO_COVER directions, short
// selling allowed, margin/options/futures off, 100% position and
// single-trade caps, no whitelist, empty blacklist.
func Default() Policy {
	return Policy{
		AllowedOrderTypes: map[trade.Type]bool{
			trade.Market:       true,
			trade.Limit:        true,
			trade.StopLoss:     true,
			trade.StopLimit:    true,
			trade.TrailingStop: true,
		},
		AllowedDirections: map[trade.Direction]bool{
			trade.Buy:        true,
			trade.Sell:       true,
			trade.SellShort:  true,
			trade.BuyToCover: true,
		},
		AllowShortSelling:  true,
		AllowMargin:        false,
		AllowOptions:       false,
		AllowFutures:       false,
		MaxPositionPct:     decimal.NewFromInt(100),
		MaxSingleTradePct:  decimal.NewFromInt(100),
		Whitelist:          nil,
		Blacklist:          map[string]bool{},
	}
}

// Aggregated is the meet of zero or more Policies, computed fresh per
// order per spec.md §4.1 (pure, no memoization, so late mutations to a
// level's Policy apply to the next order).
type Aggregated struct {
	AllowedOrderTypes map[trade.Type]bool
	AllowedDirections map[trade.Direction]bool

	AllowShortSelling bool
	AllowMargin       bool
	AllowOptions      bool
	AllowFutures      bool

	MaxPositionPct    decimal.Decimal
	MaxSingleTradePct decimal.Decimal

	hasWhitelist bool
	Whitelist    map[string]bool
	Blacklist    map[string]bool
}

// Aggregate merges levels using the combinators from §3: AND for
// booleans, MIN for percentages, INTERSECTION for allowed sets and
// whitelist, UNION for blacklist. Every combinator is order-
// independent; Strategy supplies portfolio, then fund, then account.
func Aggregate(levels ...Policy) Aggregated {
	agg := Aggregated{
		AllowedOrderTypes: cloneTypeSet(Default().AllowedOrderTypes),
		AllowedDirections: cloneDirSet(Default().AllowedDirections),
		AllowShortSelling: true,
		AllowMargin:       true,
		AllowOptions:      true,
		AllowFutures:      true,
		MaxPositionPct:    decimal.NewFromInt(100),
		MaxSingleTradePct: decimal.NewFromInt(100),
		hasWhitelist:      false,
		Whitelist:         nil,
		Blacklist:         map[string]bool{},
	}

	for _, p := range levels {
		agg.AllowedOrderTypes = intersectTypes(agg.AllowedOrderTypes, p.AllowedOrderTypes)
		agg.AllowedDirections = intersectDirs(agg.AllowedDirections, p.AllowedDirections)

		agg.AllowShortSelling = agg.AllowShortSelling && p.AllowShortSelling
		agg.AllowMargin = agg.AllowMargin && p.AllowMargin
		agg.AllowOptions = agg.AllowOptions && p.AllowOptions
		agg.AllowFutures = agg.AllowFutures && p.AllowFutures

		if p.MaxPositionPct.LessThan(agg.MaxPositionPct) {
			agg.MaxPositionPct = p.MaxPositionPct
		}
		if p.MaxSingleTradePct.LessThan(agg.MaxSingleTradePct) {
			agg.MaxSingleTradePct = p.MaxSingleTradePct
		}

		if p.Whitelist != nil {
			if !agg.hasWhitelist {
				agg.hasWhitelist = true
				agg.Whitelist = cloneStrSet(p.Whitelist)
			} else {
				agg.Whitelist = intersectStrSets(agg.Whitelist, p.Whitelist)
			}
		}
		for sym := range p.Blacklist {
			agg.Blacklist[sym] = true
		}
	}

	return agg
}

func (a Aggregated) SymbolAllowed(symbol string) bool {
	if a.Blacklist[symbol] {
		return false
	}
	if a.hasWhitelist && !a.Whitelist[symbol] {
		return false
	}
	return true
}

func cloneTypeSet(m map[trade.Type]bool) map[trade.Type]bool {
	out := make(map[trade.Type]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDirSet(m map[trade.Direction]bool) map[trade.Direction]bool {
	out := make(map[trade.Direction]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStrSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func intersectTypes(a, b map[trade.Type]bool) map[trade.Type]bool {
	out := make(map[trade.Type]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func intersectDirs(a, b map[trade.Direction]bool) map[trade.Direction]bool {
	out := make(map[trade.Direction]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func intersectStrSets(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}
