package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/history"
	"github.com/jywlabs/lessongen/internal/pipeline"
)

func TestReportState(t *testing.T) {
	tests := []struct {
		name    string
		state   pipeline.State
		wantErr bool
		want    string
	}{
		{
			name:  "committed",
			state: pipeline.State{Status: pipeline.StatusCommitted, OutputPath: "/p/src/001_x.py"},
			want:  "/p/src/001_x.py",
		},
		{
			name:  "dry run prints code",
			state: pipeline.State{Status: pipeline.StatusDryRun, Filename: "001_x.py", Code: "print('lesson')"},
			want:  "print('lesson')",
		},
		{
			name:    "failed lists errors",
			state:   pipeline.State{Status: pipeline.StatusFailed, Errors: []string{"file exists: /p/001_x.py"}},
			wantErr: true,
			want:    "file exists: /p/001_x.py",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			st := tt.state
			err := reportState(engine.NewDisplay(&buf), &st)
			if (err != nil) != tt.wantErr {
				t.Fatalf("reportState() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestPrintDomains(t *testing.T) {
	reg := domain.NewRegistry()
	reg.Register(domain.Config{Name: "dsa", Pedagogy: domain.ConceptFirst, ProjectType: domain.LessonBased, ProjectPath: "/p"})
	reg.Register(domain.Config{Name: "apps", Pedagogy: domain.ApplicationFirst, ProjectType: domain.AppBased})

	var buf bytes.Buffer
	if err := printDomains(&buf, reg); err != nil {
		t.Fatalf("printDomains() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "apps: application_first (app_based)") || !strings.Contains(lines[0], "no project path") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "dsa: concept_first (lesson_based)" {
		t.Errorf("lines[1] = %q", lines[1])
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	printHistory(&buf, []history.Run{
		{Topic: "heaps", Domain: "dsa", Engine: "claude", Status: "failed", Errors: []string{"mypy: bad\nmore"}},
		{Topic: "tries", Domain: "dsa", Engine: "openai", Status: "committed", OutputPath: "/p/002_tries.py"},
	})
	out := buf.String()
	for _, want := range []string{"dsa / heaps", "mypy: bad", "/p/002_tries.py", "claude"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "more") {
		t.Errorf("only the first error line should be shown:\n%s", out)
	}
}
