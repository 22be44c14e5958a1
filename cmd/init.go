package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jywlabs/lessongen/internal/template"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .lessongen/ directory",
	Long: `Initialize the .lessongen/ directory in the current directory.

Creates:
  .lessongen/
    config.yaml    # Engine, validation and domain settings
    logs/          # JSON run logs

Edit config.yaml to choose an engine and add domains, then run
'lessongen generate'.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	return initDir(".", cmd.OutOrStdout())
}

// initDir creates .lessongen under root with the default files. It refuses
// to touch an existing directory.
func initDir(root string, out io.Writer) error {
	configDir := filepath.Join(root, template.Dir)
	logsDir := filepath.Join(configDir, template.LogsDir)

	if _, err := os.Stat(configDir); err == nil {
		return fmt.Errorf("%s/ already exists", template.Dir)
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	for filename, content := range template.DefaultFiles() {
		filePath := filepath.Join(configDir, filename)
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
	}

	fmt.Fprintf(out, "Initialized %s/\n\n", template.Dir)
	fmt.Fprintln(out, "Created:")
	fmt.Fprintf(out, "  %s/%s   - Engine, validation and domain settings\n", template.Dir, template.ConfigFile)
	fmt.Fprintf(out, "  %s/%s/        - Run logs\n", template.Dir, template.LogsDir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Set ANTHROPIC_API_KEY (or pick another engine in config.yaml)")
	fmt.Fprintln(out, "  2. Run: lessongen generate -d dsa -t \"binary search\"")
	return nil
}
