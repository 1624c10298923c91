// Package app wires the session store, gateway, and workflow
// controllers into one dashboard facade.
package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dyike/quantdesk/internal/api"
	"github.com/dyike/quantdesk/internal/config"
	"github.com/dyike/quantdesk/internal/models"
	"github.com/dyike/quantdesk/internal/session"
	"github.com/dyike/quantdesk/internal/storage"
	"github.com/dyike/quantdesk/internal/workflow"
)

// Dashboard owns the three independent workflow controllers and the
// shared session machinery. Controllers never share mutable state with
// each other; the credential is the only resource touched by more than
// one component.
type Dashboard struct {
	cfg *config.Config

	Store *session.Store
	Coord *session.Coordinator
	API   *api.Client

	Backtest *workflow.Controller[models.BacktestResult]
	Analysis *workflow.Controller[models.AnalysisResult]
	Team     *workflow.Controller[models.TeamAnalysisResult]

	history *storage.History
}

// New builds a fully wired dashboard. The history store is optional
// infrastructure: failure to open it degrades to no run recording.
func New(cfg *config.Config) *Dashboard {
	store := session.NewStore(cfg.CredentialFile)
	coord := session.NewCoordinator(store)
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, store, coord)

	d := &Dashboard{
		cfg:      cfg,
		Store:    store,
		Coord:    coord,
		API:      client,
		Backtest: workflow.NewController[models.BacktestResult]("backtest", coord),
		Analysis: workflow.NewController[models.AnalysisResult]("analyze", coord),
		Team:     workflow.NewController[models.TeamAnalysisResult]("analyze-team", coord),
	}

	// A 401 anywhere forces every controller back to the logged-out
	// terminal view; in-flight resolutions are already fenced off by
	// the generation bump.
	coord.OnExpiry(func() {
		d.Backtest.Reset()
		d.Analysis.Reset()
		d.Team.Reset()
	})

	if history, err := storage.Open(cfg.HistoryDBPath); err != nil {
		log.Warn().Err(err).Str("path", cfg.HistoryDBPath).Msg("run history disabled")
	} else {
		d.history = history
	}

	return d
}

// Close releases dashboard resources.
func (d *Dashboard) Close() {
	if d.history != nil {
		_ = d.history.Close()
	}
}

// Startup resolves the initial view: Checking, then Authenticated or
// Unauthenticated depending on the persisted credential.
func (d *Dashboard) Startup() session.Status {
	return d.Store.Restore()
}

// Login authenticates and starts a new session generation.
func (d *Dashboard) Login(ctx context.Context, username, password string) error {
	token, err := d.API.Login(ctx, username, password)
	if err != nil {
		return err
	}
	d.Store.SetToken(token)
	d.Coord.LoggedIn()
	return nil
}

// Logout notifies the service best-effort and always succeeds locally.
func (d *Dashboard) Logout(ctx context.Context) {
	d.API.Logout(ctx)
	d.Coord.LoggedOut()
	d.Backtest.Reset()
	d.Analysis.Reset()
	d.Team.Reset()
}

// RunBacktest starts the portfolio backtest workflow. It reports false
// when a backtest is already running.
func (d *Dashboard) RunBacktest(ctx context.Context, req models.BacktestRequest) bool {
	return d.Backtest.Run(ctx, func(ctx context.Context) (*models.BacktestResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		result, err := d.API.Backtest(ctx, req)
		if err != nil {
			return nil, err
		}
		d.recordBacktest(result)
		return result, nil
	})
}

// RunAnalysis starts the single-stock analysis workflow.
func (d *Dashboard) RunAnalysis(ctx context.Context, req models.AnalysisRequest) bool {
	return d.Analysis.Run(ctx, func(ctx context.Context) (*models.AnalysisResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		result, err := d.API.Analyze(ctx, req)
		if err != nil {
			return nil, err
		}
		d.recordAnalysis(result)
		return result, nil
	})
}

// RunTeamAnalysis starts the multi-agent team analysis workflow.
func (d *Dashboard) RunTeamAnalysis(ctx context.Context, req models.AnalysisRequest) bool {
	return d.Team.Run(ctx, func(ctx context.Context) (*models.TeamAnalysisResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		result, err := d.API.AnalyzeTeam(ctx, req)
		if err != nil {
			return nil, err
		}
		d.recordTeam(result)
		return result, nil
	})
}

// RecentRuns lists recorded history entries, newest first.
func (d *Dashboard) RecentRuns(limit int) ([]storage.Entry, error) {
	if d.history == nil {
		return nil, nil
	}
	return d.history.Recent(limit)
}

// ResultsDir is where markdown report exports land.
func (d *Dashboard) ResultsDir() string {
	return d.cfg.ResultsDir
}

func (d *Dashboard) recordBacktest(result *models.BacktestResult) {
	if d.history == nil {
		return
	}
	if err := d.history.RecordBacktest(result); err != nil {
		log.Warn().Err(err).Msg("record backtest run failed")
	}
}

func (d *Dashboard) recordAnalysis(result *models.AnalysisResult) {
	if d.history == nil {
		return
	}
	if err := d.history.RecordAnalysis(result); err != nil {
		log.Warn().Err(err).Msg("record analysis run failed")
	}
}

func (d *Dashboard) recordTeam(result *models.TeamAnalysisResult) {
	if d.history == nil {
		return
	}
	if err := d.history.RecordTeamAnalysis(result); err != nil {
		log.Warn().Err(err).Msg("record team analysis run failed")
	}
}
