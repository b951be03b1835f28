// Package ledger implements the owner-scoped append-only trade log
// with by-symbol, by-status, and by-direction indices and derived
// aggregate statistics, grounded on core/ledger.py.
package ledger

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b25/tradingcore/internal/trade"
)

// Rejection is the out-of-band record of a failed order, kept only on
// the strategy's own ledger per spec.md §4.7.
type Rejection struct {
	Symbol string
	Reason string
	At     time.Time
}

// Ledger is the append-only trade log for one hierarchy owner.
type Ledger struct {
	OwnerName string
	OwnerType string
	CreatedAt time.Time

	trades     []*trade.Trade
	bySymbol   map[string][]*trade.Trade
	byStatus   map[trade.Status][]*trade.Trade
	byDirection map[trade.Direction][]*trade.Trade

	Rejections []Rejection
}

func New(ownerName, ownerType string) *Ledger {
	return &Ledger{
		OwnerName:   ownerName,
		OwnerType:   ownerType,
		CreatedAt:   time.Now(),
		bySymbol:    make(map[string][]*trade.Trade),
		byStatus:    make(map[trade.Status][]*trade.Trade),
		byDirection: make(map[trade.Direction][]*trade.Trade),
	}
}

// Record appends a trade to the chronological log and its indices.
func (l *Ledger) Record(t *trade.Trade) {
	l.trades = append(l.trades, t)
	l.bySymbol[t.Symbol] = append(l.bySymbol[t.Symbol], t)
	l.byStatus[t.Status] = append(l.byStatus[t.Status], t)
	l.byDirection[t.Direction] = append(l.byDirection[t.Direction], t)
}

// RecordRejection appends an out-of-band rejection event. Only
// meaningful on a strategy's own ledger.
func (l *Ledger) RecordRejection(symbol, reason string) {
	l.Rejections = append(l.Rejections, Rejection{Symbol: symbol, Reason: reason, At: time.Now()})
}

func (l *Ledger) AllTrades() []*trade.Trade { return l.trades }

func (l *Ledger) BySymbol(symbol string) []*trade.Trade { return l.bySymbol[symbol] }

func (l *Ledger) ByStatus(status trade.Status) []*trade.Trade { return l.byStatus[status] }

func (l *Ledger) ByDirection(dir trade.Direction) []*trade.Trade { return l.byDirection[dir] }

func (l *Ledger) FilledTrades() []*trade.Trade { return l.byStatus[trade.Filled] }

func (l *Ledger) PendingTrades() []*trade.Trade { return l.byStatus[trade.Pending] }

func (l *Ledger) Count() int { return len(l.trades) }

func (l *Ledger) FilledCount() int { return len(l.byStatus[trade.Filled]) }

func (l *Ledger) Symbols() []string {
	out := make([]string, 0, len(l.bySymbol))
	for sym := range l.bySymbol {
		out = append(out, sym)
	}
	return out
}

// TotalVolume returns Σ filled_qty * avg_fill_price over FILLED
// trades, optionally restricted to one symbol.
func (l *Ledger) TotalVolume(symbol string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.byStatus[trade.Filled] {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		total = total.Add(t.FilledQuantity.Mul(t.AvgFillPrice))
	}
	return total
}

func (l *Ledger) TotalCommission() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.byStatus[trade.Filled] {
		total = total.Add(t.Commission)
	}
	return total
}

// BuyVsSellRatio returns the count of BUY-side fills (BUY,
// BUY_TO_COVER) divided by the count of SELL-side fills (SELL,
// SELL_SHORT). Returns +Inf when there are no sell-side fills and at
// least one buy-side fill, 0 when both are empty.
func (l *Ledger) BuyVsSellRatio() float64 {
	buys := len(l.byDirection[trade.Buy]) + len(l.byDirection[trade.BuyToCover])
	sells := len(l.byDirection[trade.Sell]) + len(l.byDirection[trade.SellShort])
	if sells == 0 {
		if buys == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(buys) / float64(sells)
}

// ActivityByDate buckets FILLED trade counts by the date portion (UTC)
// of FilledAt.
func (l *Ledger) ActivityByDate() map[string]int {
	out := make(map[string]int)
	for _, t := range l.byStatus[trade.Filled] {
		day := t.FilledAt.UTC().Format("2006-01-02")
		out[day]++
	}
	return out
}

// Summary mirrors core/ledger.py's summary(): a small stable view
// suitable for printing or further export.
type Summary struct {
	OwnerName        string
	OwnerType        string
	TradeCount       int
	FilledCount      int
	TotalVolume      decimal.Decimal
	TotalCommission  decimal.Decimal
	Symbols          []string
	RejectionCount   int
}

func (l *Ledger) Summary() Summary {
	return Summary{
		OwnerName:       l.OwnerName,
		OwnerType:       l.OwnerType,
		TradeCount:      l.Count(),
		FilledCount:     l.FilledCount(),
		TotalVolume:     l.TotalVolume(""),
		TotalCommission: l.TotalCommission(),
		Symbols:         l.Symbols(),
		RejectionCount:  len(l.Rejections),
	}
}
