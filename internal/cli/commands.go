package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dyike/quantdesk/internal/app"
	"github.com/dyike/quantdesk/internal/config"
	"github.com/dyike/quantdesk/internal/display"
	"github.com/dyike/quantdesk/internal/models"
	"github.com/dyike/quantdesk/internal/report"
	"github.com/dyike/quantdesk/internal/session"
	"github.com/dyike/quantdesk/internal/transform"
	"github.com/dyike/quantdesk/internal/workflow"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "quantdesk",
		Short: "QuantDesk - backtest and analysis dashboard client",
		Long: `QuantDesk is the terminal client for the tail-end stock picking
backtest service. It runs portfolio backtests, single-stock analyses and
multi-agent team analyses against the remote service and renders the
results locally.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug || cfg.Debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newLoginCmd(cfg))
	rootCmd.AddCommand(newLogoutCmd(cfg))
	rootCmd.AddCommand(newStatusCmd(cfg))
	rootCmd.AddCommand(newBacktestCmd(cfg))
	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newTeamCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newLoginCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the analysis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := app.New(cfg)
			defer dashboard.Close()
			dashboard.Startup()

			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			username, password, err := promptLogin(username, password)
			if err != nil {
				return err
			}

			if err := dashboard.Login(context.Background(), username, password); err != nil {
				return fmt.Errorf("login failed: %s", userMessage(err))
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Account username")
	cmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := app.New(cfg)
			defer dashboard.Close()
			dashboard.Startup()

			dashboard.Logout(context.Background())
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newStatusCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session state and service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := app.New(cfg)
			defer dashboard.Close()

			status := dashboard.Startup()
			fmt.Printf("Session: %s\n", status)

			if err := dashboard.API.Health(context.Background()); err != nil {
				fmt.Printf("Service: unreachable (%s)\n", userMessage(err))
			} else {
				fmt.Println("Service: ok")
			}
			return nil
		},
	}
}

func newBacktestCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the portfolio backtest workflow",
		Long: `Run a portfolio backtest on the remote service and render the
resulting metrics, equity curve and per-symbol price series with trade
markers. Example: quantdesk backtest --cash 100000 --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard, err := authenticated(cfg)
			if err != nil {
				return err
			}
			defer dashboard.Close()

			cash, _ := cmd.Flags().GetFloat64("cash")
			refresh, _ := cmd.Flags().GetBool("refresh")
			limit, _ := cmd.Flags().GetInt("limit")
			symbol, _ := cmd.Flags().GetString("symbol")

			req := models.BacktestRequest{
				InitialCash:  cash,
				ForceRefresh: refresh,
				StockLimit:   limit,
			}

			ctx := context.Background()
			fmt.Println("Running backtest...")
			if !dashboard.RunBacktest(ctx, req) {
				return fmt.Errorf("a backtest is already running")
			}

			state := dashboard.Backtest.Wait(ctx)
			if err := checkOutcome(dashboard, state.Phase, state.Err); err != nil {
				return err
			}

			result := state.Result
			display.ShowBacktest(result)
			display.ShowEquitySeries(transform.BuildEquitySeries(result))

			if symbol == "" {
				if symbols := result.Symbols(); len(symbols) > 0 {
					symbol = symbols[0]
				}
			}
			if symbol != "" {
				display.ShowPriceSeries(symbol, transform.BuildPriceSeries(result, symbol))
			}
			return nil
		},
	}
	cmd.Flags().Float64("cash", 100000, "Initial cash")
	cmd.Flags().Int("limit", 10, "Maximum number of stocks")
	cmd.Flags().Bool("refresh", false, "Force refresh of remote market data")
	cmd.Flags().String("symbol", "", "Symbol whose price series to display (first symbol if omitted)")
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze CODE [NAME]",
		Short: "Run the single-stock analysis workflow",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard, err := authenticated(cfg)
			if err != nil {
				return err
			}
			defer dashboard.Close()

			req := models.AnalysisRequest{Code: args[0]}
			if len(args) > 1 {
				req.Name = args[1]
			}

			ctx := context.Background()
			fmt.Printf("Analyzing %s...\n", req.Code)
			if !dashboard.RunAnalysis(ctx, req) {
				return fmt.Errorf("an analysis is already running")
			}

			state := dashboard.Analysis.Wait(ctx)
			if err := checkOutcome(dashboard, state.Phase, state.Err); err != nil {
				return err
			}

			display.ShowAnalysis(state.Result)
			return maybeSave(cmd, func() (string, error) {
				return report.SaveAnalysis(dashboard.ResultsDir(), state.Result)
			})
		},
	}
	cmd.Flags().Bool("save", false, "Export the report as markdown")
	return cmd
}

func newTeamCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team CODE [NAME]",
		Short: "Run the multi-agent team analysis workflow",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard, err := authenticated(cfg)
			if err != nil {
				return err
			}
			defer dashboard.Close()

			req := models.AnalysisRequest{Code: args[0]}
			if len(args) > 1 {
				req.Name = args[1]
			}

			ctx := context.Background()
			fmt.Printf("Running team analysis for %s (this can take a while)...\n", req.Code)
			if !dashboard.RunTeamAnalysis(ctx, req) {
				return fmt.Errorf("a team analysis is already running")
			}

			state := dashboard.Team.Wait(ctx)
			if err := checkOutcome(dashboard, state.Phase, state.Err); err != nil {
				return err
			}

			display.ShowTeamAnalysis(state.Result)
			return maybeSave(cmd, func() (string, error) {
				return report.SaveTeamAnalysis(dashboard.ResultsDir(), state.Result)
			})
		},
	}
	cmd.Flags().Bool("save", false, "Export the report as markdown")
	return cmd
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded workflow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashboard := app.New(cfg)
			defer dashboard.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := dashboard.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%-20s %-13s %-10s %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Subject, e.Summary)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum entries to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("QuantDesk v1.0.0")
			fmt.Println("Terminal client for the backtest and analysis dashboard")
		},
	}
}

// authenticated builds the dashboard and requires a restored session.
func authenticated(cfg *config.Config) (*app.Dashboard, error) {
	dashboard := app.New(cfg)
	if dashboard.Startup() != session.StatusAuthenticated {
		dashboard.Close()
		return nil, fmt.Errorf("not logged in, run `quantdesk login` first")
	}
	return dashboard, nil
}

// checkOutcome converts a terminal workflow phase into a command error.
// An Idle phase after a run means the session expired mid-flight and
// the teardown already happened.
func checkOutcome(dashboard *app.Dashboard, phase workflow.Phase, errMsg string) error {
	switch phase {
	case workflow.PhaseSucceeded:
		return nil
	case workflow.PhaseFailed:
		return fmt.Errorf("%s", errMsg)
	default:
		if dashboard.Store.Status() != session.StatusAuthenticated {
			return fmt.Errorf("session expired, run `quantdesk login` again")
		}
		return fmt.Errorf("workflow did not complete")
	}
}

func maybeSave(cmd *cobra.Command, save func() (string, error)) error {
	if ok, _ := cmd.Flags().GetBool("save"); !ok {
		return nil
	}
	path, err := save()
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	fmt.Printf("\nSaved: %s\n", path)
	return nil
}
