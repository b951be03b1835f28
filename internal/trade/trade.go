// Package trade defines the signed execution record and the tagged
// variants (direction, order type, status) that flow between the OMS
// and the TMS.
package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the signed execution direction derived from a BUY/SELL
// intent plus the current position (see the OMS translation table).
type Direction string

const (
	Buy         Direction = "BUY"
	Sell        Direction = "SELL"
	SellShort   Direction = "SELL_SHORT"
	BuyToCover  Direction = "BUY_TO_COVER"
)

// IsBuySide reports whether the direction consumes cash at the OMS
// sufficiency check (BUY or BUY_TO_COVER).
func (d Direction) IsBuySide() bool {
	return d == Buy || d == BuyToCover
}

// Opening reports whether the direction increases the magnitude of a
// position in its current sign (BUY on long/flat, SELL_SHORT on
// short/flat) as opposed to reducing it.
func (d Direction) Opening(currentQty decimal.Decimal) bool {
	switch d {
	case Buy:
		return currentQty.Sign() >= 0
	case SellShort:
		return currentQty.Sign() <= 0
	default:
		return false
	}
}

// Type is the order type requested by the caller.
type Type string

const (
	Market       Type = "MARKET"
	Limit        Type = "LIMIT"
	StopLoss     Type = "STOP_LOSS"
	StopLimit    Type = "STOP_LIMIT"
	TrailingStop Type = "TRAILING_STOP"
)

// Status is the trade lifecycle state. Terminal once FILLED, CANCELLED
// or REJECTED; a Trade is never mutated after reaching a terminal
// status.
type Status string

const (
	Pending          Status = "PENDING"
	Submitted        Status = "SUBMITTED"
	Filled           Status = "FILLED"
	PartiallyFilled  Status = "PARTIALLY_FILLED"
	Cancelled        Status = "CANCELLED"
	Rejected         Status = "REJECTED"
)

func (s Status) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Trade is a signed execution record. The TMS creates it PENDING from
// a validated instruction and transitions it to SUBMITTED then FILLED;
// the OMS never builds a Trade.
type Trade struct {
	ID             string
	Symbol         string
	Direction      Direction
	OrderType      Type
	StrategyID     string

	Quantity    decimal.Decimal
	LimitPrice  *decimal.Decimal
	StopPrice   *decimal.Decimal

	Status         Status
	FilledQuantity decimal.Decimal
	AvgFillPrice   decimal.Decimal
	Commission     decimal.Decimal

	CreatedAt   time.Time
	SubmittedAt time.Time
	FilledAt    time.Time
	// BackDate overrides the submitted/filled timestamps when replaying
	// a historical run; zero value means "use wall-clock time".
	BackDate time.Time

	// Realized is set by the TMS when this fill reduced (or reversed) a
	// position, i.e. it is a closing leg that contributes to
	// RealizedPnL. Non-closing (opening) legs leave this false.
	Realized    bool
	RealizedPnL decimal.Decimal
}

// NewPending builds a PENDING trade for the given instruction inputs.
// The TMS is responsible for the SUBMITTED -> FILLED transition.
func NewPending(strategyID, symbol string, dir Direction, orderType Type, qty decimal.Decimal, limitPrice, stopPrice *decimal.Decimal, backDate time.Time) *Trade {
	return &Trade{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Direction:  dir,
		OrderType:  orderType,
		StrategyID: strategyID,
		Quantity:   qty,
		LimitPrice: limitPrice,
		StopPrice:  stopPrice,
		Status:     Pending,
		CreatedAt:  time.Now(),
		BackDate:   backDate,
	}
}

// SignedQuantity returns the quantity signed by direction: positive for
// BUY/BUY_TO_COVER, negative for SELL/SELL_SHORT.
func (t *Trade) SignedQuantity() decimal.Decimal {
	if t.Direction.IsBuySide() {
		return t.FilledQuantity
	}
	return t.FilledQuantity.Neg()
}

// effectiveTime returns BackDate when set, else now.
func (t *Trade) effectiveTime() time.Time {
	if !t.BackDate.IsZero() {
		return t.BackDate
	}
	return time.Now()
}

// Fill transitions the trade SUBMITTED -> FILLED with an immediate,
// total synchronous fill at the given price. It is the only mutation
// path the TMS uses; a terminal trade must never be re-filled.
func (t *Trade) Fill(price decimal.Decimal, commission decimal.Decimal) {
	now := t.effectiveTime()
	t.Status = Submitted
	t.SubmittedAt = now
	t.Status = Filled
	t.FilledQuantity = t.Quantity
	t.AvgFillPrice = price
	t.Commission = commission
	t.FilledAt = now
}

// Instruction is the signed, compliance-validated execution command
// derived by the OMS from a caller's BUY/SELL intent. It has not yet
// been executed by the TMS.
type Instruction struct {
	StrategyID string
	Symbol     string
	Direction  Direction
	Quantity   decimal.Decimal
	OrderType  Type
	Price      decimal.Decimal
	StopPrice  *decimal.Decimal
	Reason     string
	BackDate   time.Time
}
