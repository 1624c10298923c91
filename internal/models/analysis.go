package models

// AnalysisRequest selects the stock for a single-stock or team analysis.
type AnalysisRequest struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// Validate checks the request before it is allowed near the network.
func (r AnalysisRequest) Validate() error {
	if r.Code == "" {
		return &ValidationError{Field: "code", Reason: "must not be empty"}
	}
	return nil
}

// QuoteBlock is the snapshot quote section of an analysis report.
type QuoteBlock struct {
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Change    float64 `json:"change"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	Turnover  float64 `json:"turnover"`
	PE        float64 `json:"pe"`
}

// FundamentalsBlock summarizes valuation and liquidity.
type FundamentalsBlock struct {
	Valuation string  `json:"valuation"`
	Liquidity string  `json:"liquidity"`
	PE        float64 `json:"pe"`
}

// TechnicalBlock summarizes trend and signal state.
type TechnicalBlock struct {
	Trend        string `json:"trend"`
	Signal       string `json:"signal"`
	VolumeStatus string `json:"volume_status"`
}

// SentimentBlock summarizes market mood and capital flow.
type SentimentBlock struct {
	MarketSentiment string `json:"market_sentiment"`
	CapitalFlow     string `json:"capital_flow"`
}

// NewsBlock carries recent headlines and their aggregate tone.
type NewsBlock struct {
	Headlines []string `json:"headlines"`
	Sentiment string   `json:"sentiment"`
}

// AnalysisResult is the report returned by POST /api/analyze. Every
// block is optional; a nil block suppresses the corresponding panel
// rather than being an error.
type AnalysisResult struct {
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	Score          float64            `json:"score"`
	Recommendation string             `json:"recommendation"`
	Quote          *QuoteBlock        `json:"quote,omitempty"`
	Fundamentals   *FundamentalsBlock `json:"fundamentals,omitempty"`
	Technical      *TechnicalBlock    `json:"technical,omitempty"`
	Sentiment      *SentimentBlock    `json:"sentiment,omitempty"`
	News           *NewsBlock         `json:"news,omitempty"`
}

// TeamAnalysisResult is the report returned by POST /api/analyze-team.
// Each section is the free-text verdict of one analyst role; empty
// sections are simply not rendered.
type TeamAnalysisResult struct {
	Success      bool   `json:"success"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Fundamentals string `json:"fundamentals,omitempty"`
	Technical    string `json:"technical,omitempty"`
	Sentiment    string `json:"sentiment,omitempty"`
	News         string `json:"news,omitempty"`
	Bullish      string `json:"bullish,omitempty"`
	Bearish      string `json:"bearish,omitempty"`
	Risk         string `json:"risk,omitempty"`
	Summary      string `json:"summary,omitempty"`
}

// Sections returns the non-empty team report sections in presentation
// order, paired with their display titles.
func (r *TeamAnalysisResult) Sections() []ReportSection {
	all := []ReportSection{
		{Title: "Fundamentals", Content: r.Fundamentals},
		{Title: "Technical", Content: r.Technical},
		{Title: "Sentiment", Content: r.Sentiment},
		{Title: "News", Content: r.News},
		{Title: "Bullish Case", Content: r.Bullish},
		{Title: "Bearish Case", Content: r.Bearish},
		{Title: "Risk Assessment", Content: r.Risk},
		{Title: "Summary", Content: r.Summary},
	}
	sections := make([]ReportSection, 0, len(all))
	for _, s := range all {
		if s.Content != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

// ReportSection is one titled block of a rendered report.
type ReportSection struct {
	Title   string
	Content string
}
