package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jywlabs/lessongen/internal/domain"
)

func TestRunBatch_SequentialWithinDirectory(t *testing.T) {
	reg, dir := newTestRegistry(t)
	other := filepath.Join(t.TempDir(), "other")
	gen := &scriptedGenerator{responses: []string{validLesson}}
	o := newTestOrchestrator(reg, gen)

	reqs := []Request{
		{Topic: "first", Domain: "test"},
		{Topic: "elsewhere", Domain: "rootless", TargetDir: other},
		{Topic: "second", Domain: "test"},
		{Topic: "lost", Domain: "missing"},
		{Topic: "third", Domain: "test"},
		{Topic: "homeless", Domain: "rootless"},
		{Topic: "preview", Domain: "rootless", DryRun: true},
	}
	results := RunBatch(context.Background(), o, reqs, 2)
	if len(results) != len(reqs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(reqs))
	}

	for i, r := range results {
		if r.Request != reqs[i] {
			t.Errorf("results[%d].Request = %+v, want input order", i, r.Request)
		}
	}
	if !errors.Is(results[3].Err, domain.ErrNotFound) || results[3].State != nil {
		t.Errorf("unknown domain result = %+v", results[3])
	}
	if !errors.Is(results[5].Err, ErrNoOutputDir) || results[5].State != nil {
		t.Errorf("no output directory result = %+v", results[5])
	}
	if r := results[6]; r.Err != nil || r.State == nil || r.State.Status != StatusDryRun {
		t.Errorf("rootless dry run result = %+v", r)
	}

	for i, want := range map[int]string{0: "001_first.py", 2: "002_second.py", 4: "003_third.py"} {
		r := results[i]
		if r.Err != nil || r.State == nil || r.State.Status != StatusCommitted {
			t.Fatalf("results[%d] = %+v", i, r)
		}
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Errorf("missing %s: %v", want, err)
		}
	}
	if _, err := os.Stat(filepath.Join(other, "001_elsewhere.py")); err != nil {
		t.Errorf("missing lesson in override directory: %v", err)
	}
}

func TestRunBatch_Empty(t *testing.T) {
	reg, _ := newTestRegistry(t)
	results := RunBatch(context.Background(), newTestOrchestrator(reg, &scriptedGenerator{responses: []string{validLesson}}), nil, 0)
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
