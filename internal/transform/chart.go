// Package transform turns raw backtest payloads into chart-ready
// series. Everything here is a pure function: no shared state, no input
// mutation, identical inputs always produce identical outputs.
package transform

import (
	"github.com/dyike/quantdesk/internal/models"
)

// ChartPoint is a derived per-date record combining a close price with
// optional trade markers. Buy/Sell are nil when no trade happened on
// that date; they are never persisted and are regenerated on every
// symbol selection change.
type ChartPoint struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	Buy   *float64 `json:"buy"`
	Sell  *float64 `json:"sell"`
}

// BuildEquitySeries projects the equity curve for charting. Input order
// is preserved as-is: the data source is responsible for chronology,
// and no sorting happens here.
func BuildEquitySeries(result *models.BacktestResult) []models.EquityPoint {
	if result == nil || len(result.EquityCurve) == 0 {
		return nil
	}
	series := make([]models.EquityPoint, len(result.EquityCurve))
	copy(series, result.EquityCurve)
	return series
}

// BuildPriceSeries overlays the symbol's trades onto its price series.
// Each price point gets a buy/sell marker at the close price when a
// trade exists for that (date, action); when multiple trades share a
// (date, action) the first in trade order wins. An unknown symbol
// yields an empty series, and trades dated outside the price series
// contribute nothing.
func BuildPriceSeries(result *models.BacktestResult, symbol string) []ChartPoint {
	if result == nil {
		return nil
	}
	points, ok := result.StockData[symbol]
	if !ok {
		return nil
	}

	type marker struct{ buy, sell bool }
	markers := make(map[string]marker, len(result.Trades))
	for _, trade := range result.Trades {
		if trade.Symbol != symbol {
			continue
		}
		m := markers[trade.Date]
		switch trade.Action {
		case models.TradeBuy:
			m.buy = true
		case models.TradeSell:
			m.sell = true
		}
		markers[trade.Date] = m
	}

	series := make([]ChartPoint, 0, len(points))
	for _, point := range points {
		cp := ChartPoint{Date: point.Date, Close: point.Close}
		if m, ok := markers[point.Date]; ok {
			if m.buy {
				price := point.Close
				cp.Buy = &price
			}
			if m.sell {
				price := point.Close
				cp.Sell = &price
			}
		}
		series = append(series, cp)
	}
	return series
}
