// Package display renders workflow results in the terminal. It is
// presentation glue only: it consumes the transformed data shapes and
// never feeds anything back into the orchestration layer.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dyike/quantdesk/internal/models"
	"github.com/dyike/quantdesk/internal/transform"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// FormatCurrency renders a CNY amount with two decimal places.
func FormatCurrency(value float64) string {
	d := decimal.NewFromFloat(value).Round(2)
	return "¥" + d.StringFixed(2)
}

// FormatPercent renders a percentage with two decimal places.
func FormatPercent(value float64) string {
	return decimal.NewFromFloat(value).Round(2).StringFixed(2) + "%"
}

func signed(value float64, text string) string {
	if value >= 0 {
		return gainStyle.Render(text)
	}
	return lossStyle.Render(text)
}

func optionalRatio(value *float64) string {
	if value == nil {
		return "-"
	}
	return decimal.NewFromFloat(*value).Round(2).StringFixed(2)
}

func optionalPercent(value *float64) string {
	if value == nil {
		return "-"
	}
	return FormatPercent(*value)
}

// ShowBacktest prints the metric cards and trade table for a backtest.
func ShowBacktest(result *models.BacktestResult) {
	fmt.Println(titleStyle.Render("Backtest Results"))
	if result.Message != "" {
		fmt.Println(labelStyle.Render(result.Message))
	}
	fmt.Println()

	metrics := [][2]string{
		{"Initial Cash", FormatCurrency(result.InitialCash)},
		{"Final Value", FormatCurrency(result.FinalValue)},
		{"Total Return", signed(result.TotalReturn, FormatPercent(result.TotalReturn))},
		{"Annual Return", optionalPercent(result.AnnualReturn)},
		{"Sharpe Ratio", optionalRatio(result.SharpeRatio)},
		{"Max Drawdown", optionalPercent(result.MaxDrawdown)},
		{"Total Trades", fmt.Sprintf("%d", result.TotalTrades)},
		{"Winning", gainStyle.Render(fmt.Sprintf("%d", result.WinningTrades))},
		{"Losing", lossStyle.Render(fmt.Sprintf("%d", result.LosingTrades))},
	}

	var cards []string
	for _, m := range metrics {
		cards = append(cards, cardStyle.Render(labelStyle.Render(m[0])+"\n"+m[1]))
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...))
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, cards[3:6]...))
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, cards[6:]...))

	if len(result.Trades) > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render("Trades"))
		fmt.Printf("%-12s %-10s %-6s %10s\n", "Date", "Symbol", "Side", "Price")
		for _, trade := range result.Trades {
			side := string(trade.Action)
			if trade.Action == models.TradeBuy {
				side = gainStyle.Render(side)
			} else {
				side = lossStyle.Render(side)
			}
			fmt.Printf("%-12s %-10s %-6s %10.2f\n", trade.Date, trade.Symbol, side, trade.Price)
		}
	}
}

// ShowPriceSeries prints the merged price and trade-marker series for
// one symbol.
func ShowPriceSeries(symbol string, series []transform.ChartPoint) {
	fmt.Println()
	fmt.Println(titleStyle.Render("Price Series - " + symbol))
	if len(series) == 0 {
		fmt.Println(labelStyle.Render("no price data for this symbol"))
		return
	}
	fmt.Printf("%-12s %10s %10s %10s\n", "Date", "Close", "Buy", "Sell")
	for _, point := range series {
		buy, sell := "-", "-"
		if point.Buy != nil {
			buy = gainStyle.Render(fmt.Sprintf("%.2f", *point.Buy))
		}
		if point.Sell != nil {
			sell = lossStyle.Render(fmt.Sprintf("%.2f", *point.Sell))
		}
		fmt.Printf("%-12s %10.2f %10s %10s\n", point.Date, point.Close, buy, sell)
	}
}

// ShowEquitySeries prints the strategy vs benchmark curve endpoints.
func ShowEquitySeries(series []models.EquityPoint) {
	if len(series) == 0 {
		return
	}
	first, last := series[0], series[len(series)-1]
	fmt.Println()
	fmt.Println(titleStyle.Render("Equity Curve"))
	fmt.Printf("%s  strategy %s  benchmark %s\n",
		first.Date, FormatCurrency(first.Strategy), FormatCurrency(first.Benchmark))
	fmt.Printf("%s  strategy %s  benchmark %s  (%d points)\n",
		last.Date, FormatCurrency(last.Strategy), FormatCurrency(last.Benchmark), len(series))
}

// ShowAnalysis prints a single-stock analysis report.
func ShowAnalysis(result *models.AnalysisResult) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Analysis - %s %s", result.Code, result.Name)))
	fmt.Println()

	if q := result.Quote; q != nil {
		fmt.Println(titleStyle.Render("Quote"))
		fmt.Printf("  Price: %.2f  Change: %+.2f%%  Turnover: %.2f%%\n", q.Price, q.ChangePct, q.Turnover)
		if q.PE > 0 {
			fmt.Printf("  PE(TTM): %.2f\n", q.PE)
		}
		fmt.Println()
	}
	if f := result.Fundamentals; f != nil {
		fmt.Println(titleStyle.Render("Fundamentals"))
		fmt.Printf("  Valuation: %s  Liquidity: %s\n\n", f.Valuation, f.Liquidity)
	}
	if t := result.Technical; t != nil {
		fmt.Println(titleStyle.Render("Technical"))
		fmt.Printf("  Trend: %s  Signal: %s  Volume: %s\n\n", t.Trend, t.Signal, t.VolumeStatus)
	}
	if s := result.Sentiment; s != nil {
		fmt.Println(titleStyle.Render("Sentiment"))
		fmt.Printf("  Market: %s  Capital: %s\n\n", s.MarketSentiment, s.CapitalFlow)
	}
	if n := result.News; n != nil {
		fmt.Println(titleStyle.Render("News"))
		fmt.Printf("  Sentiment: %s\n", n.Sentiment)
		for _, headline := range n.Headlines {
			fmt.Printf("  %s\n", headline)
		}
		fmt.Println()
	}

	score := fmt.Sprintf("Score: %.0f/100  Recommendation: %s", result.Score, result.Recommendation)
	fmt.Println(cardStyle.Render(score))
}

// ShowTeamAnalysis prints each analyst section of a team report.
func ShowTeamAnalysis(result *models.TeamAnalysisResult) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Team Analysis - %s %s", result.Code, result.Name)))
	for _, section := range result.Sections() {
		fmt.Println()
		fmt.Println(titleStyle.Render(section.Title))
		fmt.Println(strings.TrimSpace(section.Content))
	}
}
