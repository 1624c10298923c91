package models

import (
	"fmt"
	"sort"
)

// TradeAction is the side of a recorded trade.
type TradeAction string

const (
	TradeBuy  TradeAction = "buy"
	TradeSell TradeAction = "sell"
)

// BacktestRequest configures a portfolio backtest run.
type BacktestRequest struct {
	InitialCash  float64 `json:"initial_cash"`
	ForceRefresh bool    `json:"force_refresh"`
	StockLimit   int     `json:"stock_limit"`
}

// Validate checks the request before it is allowed near the network.
func (r BacktestRequest) Validate() error {
	if r.InitialCash <= 0 {
		return &ValidationError{Field: "initial_cash", Reason: "must be positive"}
	}
	if r.StockLimit < 1 {
		return &ValidationError{Field: "stock_limit", Reason: "must be at least 1"}
	}
	return nil
}

// TradeRecord is a single executed trade reported by the backtest engine.
type TradeRecord struct {
	Date   string      `json:"date"`
	Symbol string      `json:"symbol"`
	Action TradeAction `json:"action"`
	Price  float64     `json:"price"`
	Size   float64     `json:"size"`
}

// EquityPoint is one day of strategy vs benchmark net value.
type EquityPoint struct {
	Date      string  `json:"date"`
	Strategy  float64 `json:"strategy"`
	Benchmark float64 `json:"benchmark"`
}

// StockPoint is one daily OHLCV bar for a single symbol.
type StockPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// BacktestResult is the full payload returned by POST /api/backtest.
// SharpeRatio, MaxDrawdown and AnnualReturn are nullable on the wire:
// the engine omits them when the run produced no usable sample.
type BacktestResult struct {
	Success       bool                    `json:"success"`
	Message       string                  `json:"message"`
	InitialCash   float64                 `json:"initial_cash"`
	FinalValue    float64                 `json:"final_value"`
	TotalReturn   float64                 `json:"total_return"`
	SharpeRatio   *float64                `json:"sharpe_ratio"`
	MaxDrawdown   *float64                `json:"max_drawdown"`
	AnnualReturn  *float64                `json:"annual_return"`
	TotalTrades   int                     `json:"total_trades"`
	WinningTrades int                     `json:"winning_trades"`
	LosingTrades  int                     `json:"losing_trades"`
	Trades        []TradeRecord           `json:"trades"`
	EquityCurve   []EquityPoint           `json:"equity_curve"`
	StockData     map[string][]StockPoint `json:"stock_data"`
}

// Validate enforces the integrity rules a well-formed backtest payload
// must satisfy. A violating response is rejected rather than displayed.
func (r *BacktestResult) Validate() error {
	if r.WinningTrades+r.LosingTrades > r.TotalTrades {
		return fmt.Errorf("trade counts inconsistent: %d winning + %d losing > %d total",
			r.WinningTrades, r.LosingTrades, r.TotalTrades)
	}
	for i := 1; i < len(r.EquityCurve); i++ {
		// ISO dates compare correctly as strings.
		if r.EquityCurve[i].Date <= r.EquityCurve[i-1].Date {
			return fmt.Errorf("equity curve dates not strictly increasing at index %d (%s -> %s)",
				i, r.EquityCurve[i-1].Date, r.EquityCurve[i].Date)
		}
	}
	return nil
}

// Symbols returns the stock_data keys in stable sorted order, so the
// CLI symbol picker is deterministic across runs.
func (r *BacktestResult) Symbols() []string {
	symbols := make([]string, 0, len(r.StockData))
	for symbol := range r.StockData {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
