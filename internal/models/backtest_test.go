package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBacktestRequestValidate(t *testing.T) {
	valid := BacktestRequest{InitialCash: 100000, StockLimit: 10}
	require.NoError(t, valid.Validate())

	var verr *ValidationError

	err := BacktestRequest{InitialCash: 0, StockLimit: 10}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "initial_cash", verr.Field)

	err = BacktestRequest{InitialCash: -5, StockLimit: 10}.Validate()
	require.Error(t, err)

	err = BacktestRequest{InitialCash: 100000, StockLimit: 0}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stock_limit", verr.Field)
}

func TestAnalysisRequestValidate(t *testing.T) {
	require.NoError(t, AnalysisRequest{Code: "600519"}.Validate())
	require.Error(t, AnalysisRequest{}.Validate())
}

func TestBacktestResultTradeCountIntegrity(t *testing.T) {
	result := &BacktestResult{TotalTrades: 5, WinningTrades: 3, LosingTrades: 2}
	require.NoError(t, result.Validate())

	bad := &BacktestResult{TotalTrades: 5, WinningTrades: 4, LosingTrades: 2}
	require.Error(t, bad.Validate())
}

func TestBacktestResultEquityCurveOrdering(t *testing.T) {
	result := &BacktestResult{
		EquityCurve: []EquityPoint{
			{Date: "2024-03-01"},
			{Date: "2024-03-04"},
			{Date: "2024-03-05"},
		},
	}
	require.NoError(t, result.Validate())

	result.EquityCurve = append(result.EquityCurve, EquityPoint{Date: "2024-03-05"})
	require.Error(t, result.Validate(), "duplicate dates are not strictly increasing")

	result.EquityCurve = []EquityPoint{{Date: "2024-03-04"}, {Date: "2024-03-01"}}
	require.Error(t, result.Validate())
}

func TestSymbolsSortedAndStable(t *testing.T) {
	result := &BacktestResult{
		StockData: map[string][]StockPoint{
			"600519": nil,
			"000858": nil,
			"300750": nil,
		},
	}
	assert.Equal(t, []string{"000858", "300750", "600519"}, result.Symbols())
}

func TestTeamSectionsSkipEmpty(t *testing.T) {
	result := &TeamAnalysisResult{
		Fundamentals: "solid balance sheet",
		Summary:      "hold",
	}
	sections := result.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "Fundamentals", sections[0].Title)
	assert.Equal(t, "Summary", sections[1].Title)
}
