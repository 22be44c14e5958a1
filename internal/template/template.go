package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jywlabs/lessongen/internal/domain"
)

//go:embed config.yaml
var DefaultConfig string

//go:embed builtin/*.py.tmpl
var builtinFS embed.FS

// Dir is the name of the lessongen configuration directory.
const Dir = ".lessongen"

// File name constants for consistent usage across the codebase.
const (
	ConfigFile  = "config.yaml"
	EnvFile     = ".env"
	LogsDir     = "logs"
	HistoryFile = "history.db"
)

// builtinFile returns the embedded template for a pedagogy style.
func builtinFile(style domain.PedagogyStyle) string {
	switch style {
	case domain.ConceptFirst:
		return "builtin/concept_lesson.py.tmpl"
	case domain.IntegrationFirst:
		return "builtin/integration_lesson.py.tmpl"
	case domain.ApplicationFirst:
		return "builtin/app_scaffold.py.tmpl"
	}
	panic(fmt.Sprintf("template: no built-in template for pedagogy style %q", style))
}

// Builtin returns the built-in template for style.
// It panics if style has no template; that is a programming error.
func Builtin(style domain.PedagogyStyle) string {
	data, err := builtinFS.ReadFile(builtinFile(style))
	if err != nil {
		panic(fmt.Sprintf("template: reading embedded template: %v", err))
	}
	return string(data)
}

// Load returns the template shown to the generation step for cfg: the
// project's own template when it exists, otherwise the built-in one for the
// domain's pedagogy style.
func Load(cfg domain.Config) (string, error) {
	if cfg.ProjectPath != "" && cfg.TemplatePath != "" {
		path := filepath.Join(cfg.ProjectPath, cfg.TemplatePath)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("failed to read template %s: %w", path, err)
			}
			return string(data), nil
		}
	}
	return Builtin(cfg.Pedagogy), nil
}

// DefaultFiles returns the default files to create in .lessongen/
func DefaultFiles() map[string]string {
	return map[string]string{
		ConfigFile: DefaultConfig,
	}
}
