package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/history"
	"github.com/jywlabs/lessongen/internal/pipeline"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Batch command flags
var (
	batchFileFlag     string
	batchParallelFlag int
	batchEngineFlag   string
	batchModelFlag    string
	batchDryRunFlag   bool
)

// batchPlan is the YAML plan file read by the batch command. Pointer
// fields tell an omitted max_iterations apart from an explicit 0.
type batchPlan struct {
	// Domain is used for lessons that do not name one.
	Domain        string        `yaml:"domain"`
	MaxIterations *int          `yaml:"max_iterations"`
	Lessons       []batchLesson `yaml:"lessons"`
}

type batchLesson struct {
	Topic         string `yaml:"topic"`
	Domain        string `yaml:"domain"`
	TargetDir     string `yaml:"target_dir"`
	MaxIterations *int   `yaml:"max_iterations"`
	DryRun        bool   `yaml:"dry_run"`
	Force         bool   `yaml:"force"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate lessons from a plan file",
	Long: `Generate every lesson listed in a YAML plan.

Lessons that land in the same directory are generated one after another in
plan order so their numbers follow each other. Different directories are
processed in parallel.

Plan format:
  domain: dsa            # default for lessons without a domain
  max_iterations: 3      # 0 writes or fails on the first draft
  lessons:
    - topic: binary search
    - topic: task groups
      domain: asyncio
      dry_run: true

Examples:
  lessongen batch -f plan.yaml
  lessongen batch -f plan.yaml -p 4 -e openai`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFileFlag, "file", "f", "", "Plan file (YAML)")
	batchCmd.Flags().IntVarP(&batchParallelFlag, "parallel", "p", 2, "Directories processed at the same time")
	batchCmd.Flags().StringVarP(&batchEngineFlag, "engine", "e", "", "Engine to use (anthropic, openai, claude, codex)")
	batchCmd.Flags().StringVarP(&batchModelFlag, "model", "m", "", "Model override for the engine")
	batchCmd.Flags().BoolVar(&batchDryRunFlag, "dry-run", false, "Validate every lesson without writing")
	_ = batchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(batchCmd)
}

// loadBatchPlan reads a plan and fills per-lesson defaults. A lesson's
// max_iterations wins over the plan's, which wins over maxIterations.
func loadBatchPlan(path string, dryRun bool, maxIterations int) ([]pipeline.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	var plan batchPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	if len(plan.Lessons) == 0 {
		return nil, fmt.Errorf("plan %s lists no lessons", path)
	}

	if plan.MaxIterations != nil {
		maxIterations = *plan.MaxIterations
	}

	reqs := make([]pipeline.Request, len(plan.Lessons))
	for i, l := range plan.Lessons {
		req := pipeline.Request{
			Topic:         l.Topic,
			Domain:        l.Domain,
			TargetDir:     l.TargetDir,
			MaxIterations: maxIterations,
			DryRun:        l.DryRun || dryRun,
			Force:         l.Force,
		}
		if req.Domain == "" {
			req.Domain = plan.Domain
		}
		if l.MaxIterations != nil {
			req.MaxIterations = *l.MaxIterations
		}
		reqs[i] = req
	}
	return reqs, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	s, err := openSession(".")
	if err != nil {
		return err
	}
	defer s.Close()

	reqs, err := loadBatchPlan(batchFileFlag, batchDryRunFlag, s.cfg.MaxRetries)
	if err != nil {
		return err
	}
	for i := range reqs {
		if reqs[i].TargetDir != "" {
			continue
		}
		// Same environment check as generate; unknown domains are reported per lesson.
		if dc, err := s.registry.Get(reqs[i].Domain); err == nil {
			dir, err := resolveTargetDir(dc, "")
			if err != nil && !reqs[i].DryRun {
				return fmt.Errorf("lesson %d (%s): %w", i+1, reqs[i].Topic, err)
			}
			reqs[i].TargetDir = dir
		}
	}

	out := cmd.OutOrStdout()
	display := engine.NewDisplay(out)
	// Engines run concurrently, so they get no display of their own.
	eng, err := newEngine(s.cfg, batchEngineFlag, batchModelFlag, nil, s.logger)
	if err != nil {
		return err
	}
	display.ShowCommandHeader("Batch", fmt.Sprintf("%s (%d lessons)", batchFileFlag, len(reqs)), eng.Name())
	display.StartSpinner(fmt.Sprintf("generating %d lessons...", len(reqs)))

	o := pipeline.New(s.registry, eng, s.newValidator(), pipeline.WithLogger(s.logger))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	results := pipeline.RunBatch(ctx, o, reqs, batchParallelFlag)
	finished := time.Now()
	display.StopSpinner()

	var runs []history.Run
	for _, r := range results {
		if r.State != nil {
			runs = append(runs, historyRun(r.State, started, finished))
		}
	}
	s.record(ctx, eng.Name(), runs...)

	if failed := printBatchResults(out, results); failed > 0 {
		return fmt.Errorf("%d of %d lessons failed", failed, len(results))
	}
	return nil
}

// printBatchResults writes one line per lesson and returns how many failed.
func printBatchResults(w io.Writer, results []pipeline.BatchResult) int {
	failed := 0
	for i, r := range results {
		prefix := fmt.Sprintf("%3d. %s / %s", i+1, r.Request.Domain, r.Request.Topic)
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %s %s\n", engine.StyleError.Render("[!!]"), prefix, r.Err)
		case r.State.Status == pipeline.StatusCommitted:
			fmt.Fprintf(w, "%s %s -> %s\n", engine.StyleSuccess.Render("[ok]"), prefix, r.State.OutputPath)
		case r.State.Status == pipeline.StatusDryRun:
			fmt.Fprintf(w, "%s %s (dry run: %s)\n", engine.StyleInfo.Render("[--]"), prefix, r.State.Filename)
		default:
			failed++
			fmt.Fprintf(w, "%s %s %s\n", engine.StyleError.Render("[!!]"), prefix, r.State.Status)
			for _, e := range r.State.Errors {
				fmt.Fprintf(w, "      %s\n", e)
			}
		}
	}
	return failed
}
