package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/history"
	"github.com/spf13/cobra"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Long: `Show the most recent lesson runs recorded by generate and batch.

History is kept in .lessongen/history.db unless historyDSN (or
LESSONGEN_HISTORY_DSN) points at a Postgres or libSQL database.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(ctx, cfg.HistoryDSNFor("."))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, historyLimitFlag)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), runs)
	return nil
}

func printHistory(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}
	for _, r := range runs {
		status := r.Status
		switch status {
		case "committed":
			status = engine.StyleSuccess.Render(status)
		case "dry_run":
			status = engine.StyleInfo.Render(status)
		default:
			status = engine.StyleError.Render(status)
		}
		fmt.Fprintf(w, "%s  %-10s %s / %s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			status, r.Domain, r.Topic,
			engine.StyleMuted.Render(fmt.Sprintf("(%s, repairs %d, %s)", r.Engine, r.Iterations, r.Duration().Round(time.Second))))
		if r.OutputPath != "" {
			fmt.Fprintf(w, "    %s\n", r.OutputPath)
		}
		if len(r.Errors) > 0 {
			first, _, _ := strings.Cut(r.Errors[0], "\n")
			fmt.Fprintf(w, "    %s\n", first)
		}
	}
}
