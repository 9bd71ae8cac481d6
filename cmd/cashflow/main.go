/*
main.go - Command-line entry point

PURPOSE:
  One binary for the whole engine: run the HTTP server, import a YAML
  input file into the database, and print projections in the terminal.

COMMANDS:
  serve                 HTTP API (see api/server.go)
  import <file>         Replace database contents with a YAML input file
  project               Spare capital, optional CSV export of the timeline
  production            Production curve with days between points
  goal                  Goal scenarios
  version               Build information

GLOBAL FLAGS:
  --db          SQLite database path (default: cashflow.db)
                Use ":memory:" for an in-memory database
  --input       Read a YAML input file instead of the database
  --log-level   zerolog level (debug, info, warn, error)

EXAMPLES:
  cashflow import budget.yaml
  cashflow project --end 2026-01-01 --csv timeline.csv
  cashflow production --input budget.yaml
  cashflow serve --port 3000

SEE ALSO:
  - config/input.go: YAML input format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/config"
	"github.com/warp/cashflow-engine/hebrew"
	"github.com/warp/cashflow-engine/report"
	"github.com/warp/cashflow-engine/store/sqlite"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	dbPath    string
	inputPath string
	logLevel  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cashflow",
		Short:         "Cash flow projection engine",
		Long:          "Projects recurring income and expenses forward and reports how much can be spent today without breaking a future floor",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "cashflow.db", "SQLite database path")
	root.PersistentFlags().StringVar(&inputPath, "input", "", "read inputs from a YAML file instead of the database")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		serveCmd(),
		importCmd(),
		projectCmd(),
		productionCmd(),
		goalCmd(),
		versionCmd(),
	)
	return root
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	return nil
}

// openSource returns the input file when --input is set, the database
// otherwise. The returned close func is never nil.
func openSource() (cashflow.Source, func() error, error) {
	if inputPath != "" {
		in, err := config.NewInputParser().LoadFromFile(inputPath)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("input", inputPath).Int("definitions", len(in.List())).Msg("input file loaded")
		return in, func() error { return nil }, nil
	}

	store, err := sqlite.New(dbPath, sqlite.WithLogger(log.Logger))
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func loadInputs(ctx context.Context) (cashflow.ControlParameters, map[cashflow.Kind][]cashflow.Definition, error) {
	src, closeSrc, err := openSource()
	if err != nil {
		return cashflow.ControlParameters{}, nil, err
	}
	defer closeSrc()
	return cashflow.LoadInputs(ctx, src)
}

// =============================================================================
// COMMANDS
// =============================================================================

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [input-file]",
		Short: "Replace the database contents with a YAML input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			store, err := sqlite.New(dbPath, sqlite.WithLogger(log.Logger))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceAll(cmd.Context(), in.ControlMap, in.List()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d definitions into %s\n", len(in.List()), dbPath)
			return nil
		},
	}
}

func projectCmd() *cobra.Command {
	var endFlag, csvPath string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the horizon and print spare capital",
		RunE: func(cmd *cobra.Command, args []string) error {
			control, defs, err := loadInputs(cmd.Context())
			if err != nil {
				return err
			}

			period := control.Horizon()
			if endFlag != "" {
				if period.End, err = cashflow.ParseDate(endFlag); err != nil {
					return err
				}
			}

			started := time.Now()
			projection, err := cashflow.NewProjector(hebrew.Calendar{}).Project(control, defs, period)
			if err != nil {
				return err
			}
			log.Info().
				Str("start", period.Start.String()).
				Str("end", period.End.String()).
				Int("instances", len(projection.Instances)).
				Dur("took", time.Since(started)).
				Msg("projection complete")

			out := cmd.OutOrStdout()
			if spare, ok := projection.SpareCapital(); ok {
				fmt.Fprintln(out, "Spare Capital", report.FormatMoney(spare))
			} else {
				fmt.Fprintln(out, "Spare Capital", "n/a (no events in range)")
			}

			if csvPath == "" {
				return nil
			}
			return writeCSV(out, csvPath, projection.Instances)
		},
	}

	cmd.Flags().StringVar(&endFlag, "end", "", "projection end date (YYYY-MM-DD); defaults to NOW + GENERATE_MONTHS")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the stamped timeline as CSV to this path (- for stdout)")
	return cmd
}

func writeCSV(stdout io.Writer, path string, instances []cashflow.Instance) error {
	if path == "-" {
		return report.WriteTimelineCSV(stdout, instances)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := report.WriteTimelineCSV(f, instances); err != nil {
		f.Close()
		return err
	}
	log.Info().Str("path", path).Int("rows", len(instances)).Msg("timeline written")
	return f.Close()
}

func productionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "production",
		Short: "Print the production curve: each new level of spare capital",
		RunE: func(cmd *cobra.Command, args []string) error {
			control, defs, err := loadInputs(cmd.Context())
			if err != nil {
				return err
			}

			projection, err := cashflow.NewProjector(hebrew.Calendar{}).ProjectHorizon(control, defs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Disposable Income above allocation")
			for _, line := range report.ProductionLines(projection.ProductionPoints(), control.Now) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func goalCmd() *cobra.Command {
	var goalFlag string

	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Value the goal scenarios at the goal date",
		RunE: func(cmd *cobra.Command, args []string) error {
			control, defs, err := loadInputs(cmd.Context())
			if err != nil {
				return err
			}

			goalDate := control.Goal.Date
			if goalFlag != "" {
				if goalDate, err = cashflow.ParseDate(goalFlag); err != nil {
					return err
				}
			}
			if goalDate.IsZero() {
				return &cashflow.ControlError{Key: cashflow.KeyGoalDate}
			}

			results, err := cashflow.NewProjector(hebrew.Calendar{}).ProjectGoal(control, defs, goalDate, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Goal %s by %s\n", report.FormatMoney(control.Goal.Value), goalDate)
			for _, line := range report.GoalLines(results) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&goalFlag, "goal-date", "", "goal date (YYYY-MM-DD); defaults to GOAL_DATE")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cashflow %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(cmd.OutOrStdout(), bi.Main.Path, bi.GoVersion)
			}
		},
	}
}
