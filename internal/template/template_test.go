package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jywlabs/lessongen/internal/domain"
)

func TestBuiltin_EveryStyle(t *testing.T) {
	for _, style := range domain.PedagogyStyles {
		t.Run(string(style), func(t *testing.T) {
			content := Builtin(style)
			if !strings.Contains(content, "from __future__ import annotations") {
				t.Errorf("built-in template for %s looks wrong:\n%s", style, content)
			}
		})
	}
}

func TestBuiltin_UnknownStylePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown style")
		}
	}()
	Builtin(domain.PedagogyStyle("lecture_first"))
}

func TestLoad_ProjectTemplate(t *testing.T) {
	root := t.TempDir()
	notes := filepath.Join(root, "notes")
	if err := os.MkdirAll(notes, 0755); err != nil {
		t.Fatal(err)
	}
	want := "#!/usr/bin/env python\n\"\"\"Template.\"\"\"\n"
	if err := os.WriteFile(filepath.Join(notes, "lesson_template.py"), []byte(want), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := domain.Config{
		Name:         "test",
		Pedagogy:     domain.ConceptFirst,
		ProjectPath:  root,
		TemplatePath: "notes/lesson_template.py",
	}
	got, err := Load(cfg)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %q, want project template %q", got, want)
	}
}

func TestLoad_FallsBackToBuiltin(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.Config
	}{
		{"no project path", domain.Config{Pedagogy: domain.IntegrationFirst, TemplatePath: "notes/t.py"}},
		{"no template path", domain.Config{Pedagogy: domain.IntegrationFirst, ProjectPath: t.TempDir()}},
		{"missing template file", domain.Config{Pedagogy: domain.IntegrationFirst, ProjectPath: t.TempDir(), TemplatePath: "notes/t.py"}},
		{"template path is a dir", domain.Config{Pedagogy: domain.IntegrationFirst, ProjectPath: filepath.Dir(t.TempDir()), TemplatePath: "."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.cfg)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got != Builtin(domain.IntegrationFirst) {
				t.Errorf("expected built-in integration template, got:\n%s", got)
			}
		})
	}
}

func TestDefaultFiles(t *testing.T) {
	files := DefaultFiles()
	if _, ok := files[ConfigFile]; !ok {
		t.Errorf("DefaultFiles() missing %s", ConfigFile)
	}
	if !strings.Contains(DefaultConfig, "maxRetries") {
		t.Error("default config should document maxRetries")
	}
}
