package report

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/quantdesk/internal/models"
)

func TestSaveAnalysisWritesAllBlocks(t *testing.T) {
	dir := t.TempDir()
	result := &models.AnalysisResult{
		Code:           "600519",
		Name:           "Kweichow Moutai",
		Score:          75,
		Recommendation: "STRONG BUY",
		Quote:          &models.QuoteBlock{Price: 1688.0, ChangePct: 1.2, Turnover: 0.5, PE: 28.4},
		Fundamentals:   &models.FundamentalsBlock{Valuation: "fair", Liquidity: "normal"},
		News:           &models.NewsBlock{Sentiment: "positive", Headlines: []string{"annual results beat"}},
	}

	path, err := SaveAnalysis(dir, result)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "# 600519 Kweichow Moutai Report")
	assert.Contains(t, text, "STRONG BUY")
	assert.Contains(t, text, "75/100")
	assert.Contains(t, text, "annual results beat")
	// Missing blocks are suppressed, not rendered empty.
	assert.NotContains(t, text, "## Technical")
}

func TestSaveTeamAnalysisWritesSections(t *testing.T) {
	dir := t.TempDir()
	result := &models.TeamAnalysisResult{
		Success: true,
		Code:    "600519",
		Bullish: "strong brand moat",
		Risk:    "policy exposure",
	}

	path, err := SaveTeamAnalysis(dir, result)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "## Bullish Case")
	assert.Contains(t, text, "strong brand moat")
	assert.Contains(t, text, "## Risk Assessment")
	assert.NotContains(t, text, "## Summary")
}
