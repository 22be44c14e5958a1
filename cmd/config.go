package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Show the current lessongen configuration.

Displays .lessongen/config.yaml if present, followed by the effective
settings after defaults and environment overrides.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := config.Path(".")

	content, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintf(out, "No %s found (using defaults)\n\n", path)
		fmt.Fprintln(out, "Run 'lessongen init' to create a configuration file.")
		fmt.Fprintln(out)
	case err != nil:
		return fmt.Errorf("failed to read config: %w", err)
	default:
		fmt.Fprintf(out, "Current configuration (%s):\n\n", path)
		fmt.Fprintln(out, string(content))
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	printEffectiveConfig(out, cfg, config.Default())
	return nil
}

func printEffectiveConfig(w io.Writer, cfg *config.Config, defaults config.Config) {
	fmt.Fprintln(w, "Effective settings:")
	fmt.Fprintf(w, "  engine:      %s\n", cfg.Engine)
	model := cfg.Model
	if model == "" {
		model = "(engine default)"
	}
	fmt.Fprintf(w, "  model:       %s\n", model)
	fmt.Fprintf(w, "  maxRetries:  %d\n", cfg.MaxRetries)
	fmt.Fprintf(w, "  toolTimeout: %s\n", cfg.ToolTimeout)
	fmt.Fprintf(w, "  python:      %s\n", cfg.Python)
	fmt.Fprintf(w, "  studyRoot:   %s\n", cfg.StudyRoot)
	fmt.Fprintf(w, "  history:     %s\n", cfg.HistoryDSNFor("."))
	fmt.Fprintf(w, "  domains:     %d configured\n", len(cfg.Domains))
	if cfg.Engine != defaults.Engine {
		fmt.Fprintf(w, "\n  (default engine is %s)\n", defaults.Engine)
	}
}
