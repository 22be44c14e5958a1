package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/pipeline"
	"github.com/spf13/cobra"
)

// Generate command flags
var (
	genDomainFlag     string
	genTopicFlag      string
	genOutFlag        string
	genDryRunFlag     bool
	genForceFlag      bool
	genMaxRetriesFlag int
	genEngineFlag     string
	genModelFlag      string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate, validate and write one lesson",
	Long: `Generate one lesson for a domain.

The engine drafts the lesson from the domain's template and the list of
existing lessons. The draft is validated and, while it fails, sent back for
repair up to --max-retries times. A passing lesson is written as the next
numbered file in the domain's lesson directory.

Examples:
  lessongen generate -d dsa -t "binary search"
  lessongen generate -d asyncio -t "task groups" --dry-run
  lessongen generate -d langgraph -t "state reducers" --out lessons/x.py
  lessongen generate -d dsa -t "heaps" -e claude --max-retries 5`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genDomainFlag, "domain", "d", "", "Domain name (e.g. dsa, asyncio)")
	generateCmd.Flags().StringVarP(&genTopicFlag, "topic", "t", "", "Lesson topic")
	generateCmd.Flags().StringVar(&genOutFlag, "out", "", "Explicit output file path (its directory receives the lesson)")
	generateCmd.Flags().BoolVar(&genDryRunFlag, "dry-run", false, "Print the lesson instead of writing it")
	generateCmd.Flags().BoolVar(&genForceFlag, "force", false, "Overwrite an existing lesson file")
	generateCmd.Flags().IntVar(&genMaxRetriesFlag, "max-retries", 0, "Maximum repair attempts (default from config, 3)")
	generateCmd.Flags().StringVarP(&genEngineFlag, "engine", "e", "", "Engine to use (anthropic, openai, claude, codex)")
	generateCmd.Flags().StringVarP(&genModelFlag, "model", "m", "", "Model override for the engine")
	_ = generateCmd.MarkFlagRequired("domain")
	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := openSession(".")
	if err != nil {
		return err
	}
	defer s.Close()

	dc, err := s.registry.Get(genDomainFlag)
	if err != nil {
		return err
	}
	target, err := resolveTargetDir(dc, genOutFlag)
	if err != nil {
		return err
	}

	maxRetries := s.cfg.MaxRetries
	if cmd.Flags().Changed("max-retries") {
		maxRetries = genMaxRetriesFlag
	}

	out := cmd.OutOrStdout()
	display := engine.NewDisplay(out)
	eng, err := newEngine(s.cfg, genEngineFlag, genModelFlag, display, s.logger)
	if err != nil {
		return err
	}
	display.ShowCommandHeader("Generate", fmt.Sprintf("%s / %s", dc.Name, genTopicFlag), eng.Name())

	o := pipeline.New(s.registry, eng, s.newValidator(),
		pipeline.WithObserver(display),
		pipeline.WithLogger(s.logger),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	st, err := o.Run(ctx, pipeline.Request{
		Topic:         genTopicFlag,
		Domain:        dc.Name,
		TargetDir:     target,
		MaxIterations: maxRetries,
		DryRun:        genDryRunFlag,
		Force:         genForceFlag,
	})
	if err != nil {
		display.StopSpinner()
		return err
	}
	s.record(ctx, eng.Name(), historyRun(st, started, time.Now()))

	return reportState(display, st)
}

// reportState renders the final state. Anything but a commit or a dry run
// is returned as an error so the process exits non-zero.
func reportState(display *engine.Display, st *pipeline.State) error {
	switch st.Status {
	case pipeline.StatusCommitted:
		display.ShowCommitted(st.OutputPath, st.Iteration)
		return nil
	case pipeline.StatusDryRun:
		display.ShowDryRun(st.Filename, st.Code, st.Iteration)
		return nil
	case pipeline.StatusPending, pipeline.StatusGenerated, pipeline.StatusFailed:
		display.ShowFailed(string(st.Status), st.Errors, st.Iteration)
		return fmt.Errorf("generation failed (status=%s)", st.Status)
	default:
		panic(fmt.Sprintf("unhandled pipeline status %q", st.Status))
	}
}
