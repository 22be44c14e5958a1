package cmd

import (
	"os"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/spf13/cobra"
)

// debugFlag enables debug logging for every command.
var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "lessongen",
	Short: "lessongen - Generate validated Python lessons with AI engines",
	Long: `lessongen generates self-contained Python lessons for study projects.

Each lesson is drafted by a text-generation engine, checked with a syntax
parser, ruff, mypy and pytest doctests, repaired until it passes or runs out
of attempts, and then written as the next numbered file in the domain's
lesson directory.

Workflow:
  lessongen init                                   Create .lessongen/ with defaults
  lessongen domains                                List available domains
  lessongen generate -d dsa -t "binary search"     Generate one lesson
  lessongen batch -f plan.yaml                     Generate many lessons
  lessongen history                                Show recent runs

Commands:
  init        Initialize .lessongen/ directory
  generate    Generate, validate and write one lesson
  batch       Generate lessons from a plan file
  domains     List registered domains
  history     Show recent runs
  config      Show current configuration
  version     Show version info`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv(".")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
