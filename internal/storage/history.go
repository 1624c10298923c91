// Package storage records completed workflow runs so past backtests
// and analyses can be listed after the fact.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dyike/quantdesk/internal/models"
)

// Run kinds as stored in the history table.
const (
	KindBacktest string = "backtest"
	KindAnalysis string = "analyze"
	KindTeam     string = "analyze-team"
)

// Entry is one recorded run.
type Entry struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Summary   string    `json:"summary"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// History is a sqlite-backed log of completed runs.
type History struct {
	db *sql.DB
}

// Open creates or opens the history database.
func Open(dbPath string) (*History, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	h := &History{db: db}
	if err := h.initTable(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

// Close releases the underlying database handle.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *History) initTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL,
		summary TEXT,
		payload_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := h.db.Exec(query); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (h *History) record(kind, subject, summary string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	_, err = h.db.Exec(
		`INSERT INTO runs (kind, subject, summary, payload_json) VALUES (?, ?, ?, ?)`,
		kind, subject, summary, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert %s run: %w", kind, err)
	}
	return nil
}

// RecordBacktest logs a successful backtest run.
func (h *History) RecordBacktest(result *models.BacktestResult) error {
	summary := fmt.Sprintf("return %.2f%%, %d trades across %d symbols",
		result.TotalReturn, result.TotalTrades, len(result.StockData))
	return h.record(KindBacktest, "portfolio", summary, result)
}

// RecordAnalysis logs a completed single-stock analysis.
func (h *History) RecordAnalysis(result *models.AnalysisResult) error {
	summary := fmt.Sprintf("score %.0f/100, %s", result.Score, result.Recommendation)
	return h.record(KindAnalysis, result.Code, summary, result)
}

// RecordTeamAnalysis logs a completed team analysis.
func (h *History) RecordTeamAnalysis(result *models.TeamAnalysisResult) error {
	summary := fmt.Sprintf("%d report sections", len(result.Sections()))
	return h.record(KindTeam, result.Code, summary, result)
}

// Recent returns the newest runs, most recent first.
func (h *History) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(
		`SELECT id, kind, subject, summary, payload_json, created_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Subject, &e.Summary, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
