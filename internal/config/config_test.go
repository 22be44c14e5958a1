package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jywlabs/lessongen/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EngineEnv, ModelEnv, HistoryDSNEnv, domain.StudyRootEnv} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != DefaultEngine {
		t.Errorf("Engine = %q, want %q", cfg.Engine, DefaultEngine)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.ToolTimeout != 120*time.Second {
		t.Errorf("ToolTimeout = %s, want 120s", cfg.ToolTimeout)
	}
	if cfg.Python != "python3" {
		t.Errorf("Python = %q", cfg.Python)
	}
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
engine: openai
model: gpt-4o
maxRetries: 0
toolTimeout: 30s
python: /usr/bin/python3.12
studyRoot: /srv/study
historyDSN: postgres://localhost/lessons
domains:
  - name: langgraph
    pedagogy: integration_first
    projectPath: /srv/study/learning-langgraph
    lessonDir: lessons
    strictTypes: false
    doctest: skip
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != "openai" || cfg.Model != "gpt-4o" {
		t.Errorf("engine/model = %q/%q", cfg.Engine, cfg.Model)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want explicit 0 kept", cfg.MaxRetries)
	}
	if cfg.ToolTimeout != 30*time.Second {
		t.Errorf("ToolTimeout = %s", cfg.ToolTimeout)
	}
	if cfg.StudyRoot != "/srv/study" || cfg.HistoryDSN != "postgres://localhost/lessons" {
		t.Errorf("studyRoot/historyDSN = %q/%q", cfg.StudyRoot, cfg.HistoryDSN)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	lg, err := reg.Get("langgraph")
	if err != nil {
		t.Fatalf("Get(langgraph) error = %v", err)
	}
	if lg.Pedagogy != domain.IntegrationFirst || lg.ProjectType != domain.LessonBased {
		t.Errorf("langgraph = %+v", lg)
	}
	if lg.StrictTypes || lg.Doctest != domain.DoctestSkip {
		t.Errorf("langgraph policy = strict %v doctest %q", lg.StrictTypes, lg.Doctest)
	}
	if lg.LessonRoot() != filepath.Join("/srv/study/learning-langgraph", "lessons") {
		t.Errorf("LessonRoot() = %q", lg.LessonRoot())
	}

	dsa, err := reg.Get("dsa")
	if err != nil {
		t.Fatalf("built-in domain missing: %v", err)
	}
	if !strings.HasPrefix(dsa.ProjectPath, "/srv/study") {
		t.Errorf("dsa.ProjectPath = %q, want under study root", dsa.ProjectPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "engine: claude\nmodel: opus\n")
	t.Setenv(EngineEnv, "codex")
	t.Setenv(ModelEnv, "")
	t.Setenv(HistoryDSNEnv, "libsql://db.example.turso.io")
	t.Setenv(domain.StudyRootEnv, "/tmp/study")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != "codex" {
		t.Errorf("Engine = %q, want env override", cfg.Engine)
	}
	if cfg.Model != "opus" {
		t.Errorf("Model = %q, empty env must not override", cfg.Model)
	}
	if cfg.HistoryDSN != "libsql://db.example.turso.io" || cfg.StudyRoot != "/tmp/study" {
		t.Errorf("HistoryDSN/StudyRoot = %q/%q", cfg.HistoryDSN, cfg.StudyRoot)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad yaml", content: "engine: [", want: "failed to parse"},
		{name: "bad timeout", content: "toolTimeout: soon", want: "invalid toolTimeout"},
		{name: "negative retries", content: "maxRetries: -1", want: "maxRetries"},
		{name: "empty engine", content: `engine: ""`, want: "engine must not be empty"},
		{name: "missing pedagogy", content: "domains:\n  - name: x\n", want: "domains[0]"},
		{name: "bad pedagogy", content: "domains:\n  - name: x\n    pedagogy: vibes\n", want: "domains[0]"},
		{name: "bad doctest", content: "domains:\n  - name: x\n    pedagogy: concept_first\n    doctest: maybe\n", want: "domains[0]"},
		{name: "duplicate", content: "domains:\n  - name: x\n    pedagogy: concept_first\n  - name: x\n    pedagogy: concept_first\n", want: "duplicate domain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRegistry_ConfiguredDomainOverridesBuiltin(t *testing.T) {
	cfg := Default()
	cfg.StudyRoot = "/study"
	cfg.Domains = []Domain{{Name: "dsa", Pedagogy: "application_first", ProjectType: "app_based"}}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	dsa, _ := reg.Get("dsa")
	if dsa.Pedagogy != domain.ApplicationFirst || dsa.ProjectType != domain.AppBased {
		t.Errorf("dsa = %+v, want configured values", dsa)
	}
	if !dsa.StrictTypes {
		t.Error("StrictTypes should default to true")
	}
	if dsa.Doctest != domain.DoctestDeterministic {
		t.Errorf("Doctest = %q, want registry default", dsa.Doctest)
	}
}

func TestHistoryDSNFor(t *testing.T) {
	cfg := Default()
	if got := cfg.HistoryDSNFor("/proj"); got != "sqlite:///proj/.lessongen/history.db" {
		t.Errorf("HistoryDSNFor() = %q", got)
	}
	cfg.HistoryDSN = "postgres://x"
	if got := cfg.HistoryDSNFor("/proj"); got != "postgres://x" {
		t.Errorf("HistoryDSNFor() = %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".lessongen"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".lessongen", ".env"), []byte("LESSONGEN_TEST_A=inner\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LESSONGEN_TEST_A=outer\nLESSONGEN_TEST_B=outer\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LESSONGEN_TEST_A", "")
	t.Setenv("LESSONGEN_TEST_B", "")
	os.Unsetenv("LESSONGEN_TEST_A")
	os.Unsetenv("LESSONGEN_TEST_B")

	if err := LoadEnv(dir); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("LESSONGEN_TEST_A"); got != "inner" {
		t.Errorf("LESSONGEN_TEST_A = %q, want first file to win", got)
	}
	if got := os.Getenv("LESSONGEN_TEST_B"); got != "outer" {
		t.Errorf("LESSONGEN_TEST_B = %q", got)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	if err := LoadEnv(t.TempDir()); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
}
