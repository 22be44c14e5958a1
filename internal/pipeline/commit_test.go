package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/lesson"
)

func committedState(t *testing.T, dir, filename string, force bool) *State {
	t.Helper()
	meta, err := lesson.NewMetadata(1, "topic", filename).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return &State{
		Request:  Request{Topic: "topic", Domain: "test", TargetDir: dir, Force: force},
		Code:     "print('new')\n",
		Metadata: meta,
		Filename: filename,
		Valid:    true,
		Status:   StatusGenerated,
	}
}

func TestCommit_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "001_topic.py")
	if err := os.WriteFile(existing, []byte("print('old')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	o := New(domain.NewRegistry(), nil, nil)
	cfg := domain.Config{Name: "test"}

	st := committedState(t, dir, "001_topic.py", false)
	o.commit(st, cfg)
	if st.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", st.Status)
	}
	if len(st.Errors) != 1 || !strings.Contains(st.Errors[0], "file exists") {
		t.Errorf("Errors = %v, want file exists", st.Errors)
	}
	if data, _ := os.ReadFile(existing); string(data) != "print('old')\n" {
		t.Errorf("existing file was modified: %q", data)
	}

	st = committedState(t, dir, "001_topic.py", true)
	o.commit(st, cfg)
	if st.Status != StatusCommitted {
		t.Fatalf("forced Status = %q, errors = %v", st.Status, st.Errors)
	}
	if data, _ := os.ReadFile(existing); string(data) != "print('new')\n" {
		t.Errorf("forced write content = %q", data)
	}
}

func TestCommit_PathTraversal(t *testing.T) {
	dir := t.TempDir()
	o := New(domain.NewRegistry(), nil, nil)

	st := committedState(t, dir, "../escape.py", false)
	o.commit(st, domain.Config{Name: "test"})
	if st.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", st.Status)
	}
	if len(st.Errors) != 1 || st.Errors[0] != "path traversal detected" {
		t.Errorf("Errors = %v", st.Errors)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.py")); !os.IsNotExist(err) {
		t.Errorf("escaped file was written")
	}
}

func TestCommit_InvalidKeepsErrors(t *testing.T) {
	o := New(domain.NewRegistry(), nil, nil)
	st := committedState(t, t.TempDir(), "001_topic.py", false)
	st.Valid = false
	st.Errors = []string{"mypy: error"}

	o.commit(st, domain.Config{Name: "test"})
	if st.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", st.Status)
	}
	if len(st.Errors) != 1 || st.Errors[0] != "mypy: error" {
		t.Errorf("Errors = %v, want the validation errors unchanged", st.Errors)
	}
}

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusGenerated, false},
		{StatusCommitted, true},
		{StatusDryRun, true},
		{StatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
