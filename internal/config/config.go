// Package config loads .lessongen/config.yaml and the optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/pipeline"
	"github.com/jywlabs/lessongen/internal/template"
	"github.com/jywlabs/lessongen/internal/validate"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EngineEnv     = "LESSONGEN_ENGINE"
	ModelEnv      = "LESSONGEN_MODEL"
	HistoryDSNEnv = "LESSONGEN_HISTORY_DSN"
)

// DefaultEngine is used when neither config nor environment names one.
const DefaultEngine = "anthropic"

// Domain is one user-defined domain entry.
type Domain struct {
	Name         string            `yaml:"name" validate:"required"`
	Pedagogy     string            `yaml:"pedagogy" validate:"required,oneof=concept_first integration_first application_first"`
	ProjectType  string            `yaml:"projectType" validate:"omitempty,oneof=lesson_based app_based"`
	ProjectPath  string            `yaml:"projectPath"`
	LessonDir    string            `yaml:"lessonDir"`
	TemplatePath string            `yaml:"templatePath"`
	SourceRefs   map[string]string `yaml:"sourceRefs"`
	StrictTypes  *bool             `yaml:"strictTypes"`
	Doctest      string            `yaml:"doctest" validate:"omitempty,oneof=deterministic ellipsis skip"`
}

// rawConfig mirrors the YAML file. Pointer fields distinguish "not set" (nil)
// from "set to empty".
type rawConfig struct {
	Engine      *string  `yaml:"engine"`
	Model       *string  `yaml:"model"`
	MaxRetries  *int     `yaml:"maxRetries"`
	ToolTimeout *string  `yaml:"toolTimeout"`
	Python      *string  `yaml:"python"`
	StudyRoot   *string  `yaml:"studyRoot"`
	HistoryDSN  *string  `yaml:"historyDSN"`
	Domains     []Domain `yaml:"domains"`
}

// Config is the resolved configuration.
type Config struct {
	Engine      string
	Model       string
	MaxRetries  int
	ToolTimeout time.Duration
	Python      string
	StudyRoot   string
	HistoryDSN  string
	Domains     []Domain
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Engine:      DefaultEngine,
		MaxRetries:  pipeline.DefaultMaxIterations,
		ToolTimeout: validate.DefaultTimeout,
		Python:      "python3",
		StudyRoot:   domain.DefaultStudyRoot(),
	}
}

// Path returns the config file location under dir.
func Path(dir string) string {
	return filepath.Join(dir, template.Dir, template.ConfigFile)
}

// LoadEnv loads .lessongen/.env and then .env from dir into the process
// environment. Missing files are ignored and existing variables win.
func LoadEnv(dir string) error {
	for _, path := range []string{
		filepath.Join(dir, template.Dir, template.EnvFile),
		filepath.Join(dir, template.EnvFile),
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load reads the configuration from dir. A missing file yields defaults.
// Environment overrides are applied last.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		var raw rawConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", Path(dir), err)
		}
		if err := cfg.merge(raw); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	if raw.Engine != nil {
		c.Engine = *raw.Engine
	}
	if raw.Model != nil {
		c.Model = *raw.Model
	}
	if raw.MaxRetries != nil {
		c.MaxRetries = *raw.MaxRetries
	}
	if raw.ToolTimeout != nil && *raw.ToolTimeout != "" {
		d, err := time.ParseDuration(*raw.ToolTimeout)
		if err != nil {
			return fmt.Errorf("invalid toolTimeout %q: %w", *raw.ToolTimeout, err)
		}
		c.ToolTimeout = d
	}
	if raw.Python != nil && *raw.Python != "" {
		c.Python = *raw.Python
	}
	if raw.StudyRoot != nil && *raw.StudyRoot != "" {
		c.StudyRoot = expandHome(*raw.StudyRoot)
	}
	if raw.HistoryDSN != nil {
		c.HistoryDSN = *raw.HistoryDSN
	}
	c.Domains = raw.Domains
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(domain.StudyRootEnv); v != "" {
		c.StudyRoot = expandHome(v)
	}
	if v := os.Getenv(EngineEnv); v != "" {
		c.Engine = v
	}
	if v := os.Getenv(ModelEnv); v != "" {
		c.Model = v
	}
	if v := os.Getenv(HistoryDSNEnv); v != "" {
		c.HistoryDSN = v
	}
}

// Validate checks the scalar settings and every domain entry.
func (c *Config) Validate() error {
	if c.Engine == "" {
		return fmt.Errorf("engine must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must be 0 or greater")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("toolTimeout must be greater than 0")
	}

	v := validator.New()
	seen := make(map[string]bool, len(c.Domains))
	for i, d := range c.Domains {
		if err := v.Struct(d); err != nil {
			return fmt.Errorf("domains[%d]: %w", i, err)
		}
		if seen[d.Name] {
			return fmt.Errorf("domains[%d]: duplicate domain %q", i, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Registry builds a domain registry holding the built-in domains rooted at
// StudyRoot, overlaid with the configured ones.
func (c *Config) Registry() (*domain.Registry, error) {
	reg := domain.NewRegistry()
	domain.RegisterDefaults(reg, c.StudyRoot)
	for _, d := range c.Domains {
		dc, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("domain %s: %w", d.Name, err)
		}
		reg.Register(dc)
	}
	return reg, nil
}

// HistoryDSNFor returns the configured history DSN, or a SQLite file under
// dir/.lessongen when none is set.
func (c *Config) HistoryDSNFor(dir string) string {
	if c.HistoryDSN != "" {
		return c.HistoryDSN
	}
	return "sqlite://" + filepath.Join(dir, template.Dir, template.HistoryFile)
}

func (d Domain) toDomain() (domain.Config, error) {
	pedagogy, err := domain.ParsePedagogyStyle(d.Pedagogy)
	if err != nil {
		return domain.Config{}, err
	}
	projectType := domain.LessonBased
	if d.ProjectType != "" {
		if projectType, err = domain.ParseProjectType(d.ProjectType); err != nil {
			return domain.Config{}, err
		}
	}
	var doctest domain.DoctestPolicy
	if d.Doctest != "" {
		if doctest, err = domain.ParseDoctestPolicy(d.Doctest); err != nil {
			return domain.Config{}, err
		}
	}
	strict := true
	if d.StrictTypes != nil {
		strict = *d.StrictTypes
	}
	return domain.Config{
		Name:         d.Name,
		Pedagogy:     pedagogy,
		ProjectType:  projectType,
		ProjectPath:  expandHome(d.ProjectPath),
		LessonDir:    d.LessonDir,
		TemplatePath: d.TemplatePath,
		SourceRefs:   d.SourceRefs,
		StrictTypes:  strict,
		Doctest:      doctest,
	}, nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
