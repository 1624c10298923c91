// Package report exports analysis results as dated markdown files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dyike/quantdesk/internal/models"
)

// SaveAnalysis writes a single-stock analysis report under dir and
// returns the file path.
func SaveAnalysis(dir string, result *models.AnalysisResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s Report\n\n", result.Code, result.Name)
	fmt.Fprintf(&b, "**Time**: %s\n\n---\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if q := result.Quote; q != nil {
		b.WriteString("## Quote\n\n")
		fmt.Fprintf(&b, "- Price: %.2f\n", q.Price)
		fmt.Fprintf(&b, "- Change: %+.2f%%\n", q.ChangePct)
		fmt.Fprintf(&b, "- Turnover: %.2f%%\n", q.Turnover)
		if q.PE > 0 {
			fmt.Fprintf(&b, "- PE(TTM): %.2f\n", q.PE)
		} else {
			b.WriteString("- PE(TTM): loss\n")
		}
		b.WriteString("\n")
	}
	if f := result.Fundamentals; f != nil {
		b.WriteString("## Fundamentals\n\n")
		fmt.Fprintf(&b, "- Valuation: %s\n- Liquidity: %s\n\n", f.Valuation, f.Liquidity)
	}
	if t := result.Technical; t != nil {
		b.WriteString("## Technical\n\n")
		fmt.Fprintf(&b, "- Trend: %s\n- Signal: %s\n- Volume: %s\n\n", t.Trend, t.Signal, t.VolumeStatus)
	}
	if s := result.Sentiment; s != nil {
		b.WriteString("## Sentiment\n\n")
		fmt.Fprintf(&b, "- Market: %s\n- Capital: %s\n\n", s.MarketSentiment, s.CapitalFlow)
	}
	if n := result.News; n != nil {
		b.WriteString("## News\n\n")
		fmt.Fprintf(&b, "- Sentiment: %s\n", n.Sentiment)
		for _, headline := range n.Headlines {
			fmt.Fprintf(&b, "- %s\n", headline)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Result\n\n")
	fmt.Fprintf(&b, "- **Score**: %.0f/100\n", result.Score)
	fmt.Fprintf(&b, "- **Recommendation**: %s\n\n", result.Recommendation)
	b.WriteString("---\n*Reference only, not investment advice*\n")

	return writeReport(dir, result.Code, "analysis", b.String())
}

// SaveTeamAnalysis writes a team analysis report under dir and returns
// the file path.
func SaveTeamAnalysis(dir string, result *models.TeamAnalysisResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s Team Analysis\n\n", result.Code, result.Name)
	fmt.Fprintf(&b, "**Time**: %s\n\n---\n\n", time.Now().Format("2006-01-02 15:04:05"))

	for _, section := range result.Sections() {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section.Title, section.Content)
	}

	b.WriteString("---\n*Reference only, not investment advice*\n")

	return writeReport(dir, result.Code, "team", b.String())
}

func writeReport(dir, code, kind, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	filename := fmt.Sprintf("%s_%s_%s.md", code, kind, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}
