package cmd

import (
	"fmt"
	"io"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List registered domains",
	Long: `List the built-in domains and those configured in .lessongen/config.yaml.

Each line shows the domain name, its pedagogy style and its project type.`,
	Args: cobra.NoArgs,
	RunE: runDomains,
}

func init() {
	rootCmd.AddCommand(domainsCmd)
}

func runDomains(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	return printDomains(cmd.OutOrStdout(), reg)
}

func printDomains(w io.Writer, reg *domain.Registry) error {
	for _, name := range reg.Names() {
		dc, err := reg.Get(name)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("  %s: %s (%s)", name, dc.Pedagogy, dc.ProjectType)
		if dc.ProjectPath == "" {
			line += " " + engine.StyleMuted.Render("[no project path]")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
