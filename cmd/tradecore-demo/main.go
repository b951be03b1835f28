// Command tradecore-demo wires a small Account -> Fund -> Portfolio ->
// Strategy hierarchy, places a couple of orders, and prints the
// resulting performance metrics as JSON plus a one-line risk summary.
// It exists to exercise the
// wiring end to end; the engine itself has no CLI or HTTP surface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/b25/tradingcore/internal/config"
	"github.com/b25/tradingcore/internal/export"
	"github.com/b25/tradingcore/internal/hierarchy"
	"github.com/b25/tradingcore/internal/oms"
	"github.com/b25/tradingcore/internal/riskview"
	"github.com/b25/tradingcore/internal/trade"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		cfg = defaultConfig()
	}

	logger, err := zap.NewProduction()
	if cfg.Logging.Development {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	account := hierarchy.NewAccount("acct-1", "demo-account", decimal.NewFromInt(1_000_000), logger)
	fund, err := account.CreateFund("fund-1", "demo-fund", decimal.NewFromInt(500_000))
	if err != nil {
		logger.Fatal("create fund", zap.Error(err))
	}
	portfolio, err := fund.CreatePortfolio("port-1", "demo-portfolio", decimal.NewFromInt(200_000))
	if err != nil {
		logger.Fatal("create portfolio", zap.Error(err))
	}
	strategy, err := portfolio.CreateStrategy("strat-1", "demo-strategy", decimal.NewFromInt(100_000))
	if err != nil {
		logger.Fatal("create strategy", zap.Error(err))
	}

	_, _, err = strategy.PlaceOrder("AAPL", oms.ActionBuy, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(150), nil, time.Time{})
	if err != nil {
		logger.Error("buy failed", zap.Error(err))
	}
	_, _, err = strategy.PlaceOrder("AAPL", oms.ActionSell, decimal.NewFromInt(10), trade.Market, decimal.NewFromInt(165), nil, time.Time{})
	if err != nil {
		logger.Error("sell failed", zap.Error(err))
	}

	metrics := strategy.PerformanceMetrics(nil, cfg.RiskFreeRateDecimal())
	view := export.BuildMetricsView(metrics)
	_ = export.WriteMetricsJSON(os.Stdout, view)

	risk := riskview.Compute(strategy, nil)
	fmt.Printf("open positions: %d, cash headroom: %s%%\n", risk.OpenPositionCount, risk.CashHeadroomPct.StringFixed(2))
}

func defaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Logging.Development = true
	cfg.RiskFreeRate = "0.02"
	cfg.CommissionPct = "0"
	cfg.EquitySampleDays = 1
	cfg.EmergencyStop.MaxDrawdownPct = "20"
	return cfg
}
