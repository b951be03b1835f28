// Package export produces the stable ledger-to-dict and
// metrics-to-dict schemas spec.md §6 specifies, as JSON and CSV
// writers. It is a pure external-collaborator adapter: it reads the
// engine's views and never mutates state.
//
// Grounded on core/ledger.py's export_to_dict and
// tools/reporting/report_generator.py.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/b25/tradingcore/internal/ledger"
	"github.com/b25/tradingcore/internal/perf"
)

// LedgerView is the stable, JSON/CSV-friendly ledger schema from
// spec.md §6: "owner name, owner type, creation timestamp, counts,
// volume, commission, symbols list, direction histogram, per-date
// activity".
type LedgerView struct {
	OwnerName       string         `json:"owner_name" csv:"owner_name"`
	OwnerType       string         `json:"owner_type" csv:"owner_type"`
	CreatedAt       string         `json:"created_at" csv:"created_at"`
	TradeCount      int            `json:"trade_count" csv:"trade_count"`
	FilledCount     int            `json:"filled_count" csv:"filled_count"`
	TotalVolume     string         `json:"total_volume" csv:"total_volume"`
	TotalCommission string         `json:"total_commission" csv:"total_commission"`
	Symbols         []string       `json:"symbols" csv:"-"`
	DirectionCounts map[string]int `json:"direction_counts" csv:"-"`
	ActivityByDate  map[string]int `json:"activity_by_date" csv:"-"`
	RejectionCount  int            `json:"rejection_count" csv:"rejection_count"`
}

// BuildLedgerView derives a LedgerView from a live Ledger.
func BuildLedgerView(l *ledger.Ledger) LedgerView {
	s := l.Summary()
	dirs := make(map[string]int)
	for _, t := range l.AllTrades() {
		dirs[string(t.Direction)]++
	}
	return LedgerView{
		OwnerName:       s.OwnerName,
		OwnerType:       s.OwnerType,
		CreatedAt:       l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		TradeCount:      s.TradeCount,
		FilledCount:     s.FilledCount,
		TotalVolume:     s.TotalVolume.String(),
		TotalCommission: s.TotalCommission.String(),
		Symbols:         s.Symbols,
		DirectionCounts: dirs,
		ActivityByDate:  l.ActivityByDate(),
		RejectionCount:  s.RejectionCount,
	}
}

// WriteLedgerJSON writes v as indented JSON.
func WriteLedgerJSON(w io.Writer, v LedgerView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteLedgerCSV writes the flat (non-map/slice) fields of v as a
// single-row CSV with a header, matching the stable-schema
// requirement for the scalar summary fields.
func WriteLedgerCSV(w io.Writer, v LedgerView) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"owner_name", "owner_type", "created_at", "trade_count", "filled_count", "total_volume", "total_commission", "rejection_count"}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := []string{
		v.OwnerName, v.OwnerType, v.CreatedAt,
		strconv.Itoa(v.TradeCount), strconv.Itoa(v.FilledCount),
		v.TotalVolume, v.TotalCommission, strconv.Itoa(v.RejectionCount),
	}
	return cw.Write(row)
}

// MetricsView is the stable metrics-to-dict schema from spec.md §6:
// "owner identity, initial and current balances, return/CAGR, all
// risk and trade statistics".
type MetricsView struct {
	OwnerName      string `json:"owner_name" csv:"owner_name"`
	OwnerType      string `json:"owner_type" csv:"owner_type"`
	InitialBalance string `json:"initial_balance" csv:"initial_balance"`
	CurrentBalance string `json:"current_balance" csv:"current_balance"`

	TotalReturn    string `json:"total_return" csv:"total_return"`
	TotalReturnPct string `json:"total_return_pct" csv:"total_return_pct"`
	CAGRPct        string `json:"cagr_pct" csv:"cagr_pct"`

	TotalTrades   int    `json:"total_trades" csv:"total_trades"`
	WinningTrades int    `json:"winning_trades" csv:"winning_trades"`
	LosingTrades  int    `json:"losing_trades" csv:"losing_trades"`
	WinRatePct    string `json:"win_rate_pct" csv:"win_rate_pct"`

	AverageTradePnL string  `json:"average_trade_pnl" csv:"average_trade_pnl"`
	LargestWin      string  `json:"largest_win" csv:"largest_win"`
	LargestLoss     string  `json:"largest_loss" csv:"largest_loss"`
	ProfitFactor    float64 `json:"profit_factor" csv:"profit_factor"`

	MaxDrawdownPct       string `json:"max_drawdown_pct" csv:"max_drawdown_pct"`
	VolatilityPct        string `json:"volatility_pct" csv:"volatility_pct"`
	DownsideDeviationPct string `json:"downside_deviation_pct" csv:"downside_deviation_pct"`

	SharpeRatio  string `json:"sharpe_ratio" csv:"sharpe_ratio"`
	SortinoRatio string `json:"sortino_ratio" csv:"sortino_ratio"`
	CalmarRatio  string `json:"calmar_ratio" csv:"calmar_ratio"`

	TotalVolume    string  `json:"total_volume" csv:"total_volume"`
	TradeFrequency float64 `json:"trade_frequency" csv:"trade_frequency"`
}

// BuildMetricsView derives a MetricsView from a computed perf.Metrics.
func BuildMetricsView(m perf.Metrics) MetricsView {
	return MetricsView{
		OwnerName:            m.OwnerName,
		OwnerType:            m.OwnerType,
		InitialBalance:       m.InitialBalance.String(),
		CurrentBalance:       m.CurrentBalance.String(),
		TotalReturn:          m.TotalReturn.String(),
		TotalReturnPct:       m.TotalReturnPct.String(),
		CAGRPct:              m.CAGR.String(),
		TotalTrades:          m.TotalTrades,
		WinningTrades:        m.WinningTrades,
		LosingTrades:         m.LosingTrades,
		WinRatePct:           m.WinRatePct.String(),
		AverageTradePnL:      m.AverageTradePnL.String(),
		LargestWin:           m.LargestWin.String(),
		LargestLoss:          m.LargestLoss.String(),
		ProfitFactor:         m.ProfitFactor,
		MaxDrawdownPct:       m.MaxDrawdownPct.String(),
		VolatilityPct:        m.VolatilityPct.String(),
		DownsideDeviationPct: m.DownsideDeviationPct.String(),
		SharpeRatio:          m.SharpeRatio.String(),
		SortinoRatio:         m.SortinoRatio.String(),
		CalmarRatio:          m.CalmarRatio.String(),
		TotalVolume:          m.TotalVolume.String(),
		TradeFrequency:       m.TradeFrequency,
	}
}

func WriteMetricsJSON(w io.Writer, v MetricsView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func WriteMetricsCSV(w io.Writer, v MetricsView) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"owner_name", "owner_type", "initial_balance", "current_balance",
		"total_return", "total_return_pct", "cagr_pct",
		"total_trades", "winning_trades", "losing_trades", "win_rate_pct",
		"average_trade_pnl", "largest_win", "largest_loss", "profit_factor",
		"max_drawdown_pct", "volatility_pct", "downside_deviation_pct",
		"sharpe_ratio", "sortino_ratio", "calmar_ratio",
		"total_volume", "trade_frequency",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := []string{
		v.OwnerName, v.OwnerType, v.InitialBalance, v.CurrentBalance,
		v.TotalReturn, v.TotalReturnPct, v.CAGRPct,
		strconv.Itoa(v.TotalTrades), strconv.Itoa(v.WinningTrades), strconv.Itoa(v.LosingTrades), v.WinRatePct,
		v.AverageTradePnL, v.LargestWin, v.LargestLoss, strconv.FormatFloat(v.ProfitFactor, 'f', -1, 64),
		v.MaxDrawdownPct, v.VolatilityPct, v.DownsideDeviationPct,
		v.SharpeRatio, v.SortinoRatio, v.CalmarRatio,
		v.TotalVolume, strconv.FormatFloat(v.TradeFrequency, 'f', -1, 64),
	}
	return cw.Write(row)
}
