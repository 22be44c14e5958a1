package claude

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jywlabs/lessongen/internal/engine"
	"github.com/jywlabs/lessongen/internal/prompt"
)

func TestNew(t *testing.T) {
	e := New(engine.Config{})
	if e.Timeout != engine.DefaultTimeout {
		t.Errorf("expected Timeout=%v, got %v", engine.DefaultTimeout, e.Timeout)
	}
	if e.Name() != "claude" {
		t.Errorf("expected Name()=\"claude\", got %q", e.Name())
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  []string
	}{
		{
			name: "default model",
			want: []string{"-p", "--output-format", "json", "--system-prompt", "SYS"},
		},
		{
			name:  "explicit model",
			model: "sonnet",
			want:  []string{"-p", "--output-format", "json", "--model", "sonnet", "--system-prompt", "SYS"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(engine.Config{Model: tt.model})
			got := e.BuildArgs("SYS")
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("BuildArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineRegistration(t *testing.T) {
	e, err := engine.New("claude", engine.Config{})
	if err != nil {
		t.Fatalf("engine.New(\"claude\") failed: %v", err)
	}
	if e.Name() != "claude" {
		t.Errorf("expected claude engine, got %q", e.Name())
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantText  string
		wantErr   bool
		wantIsErr bool
		wantTok   int
	}{
		{
			name:     "json result",
			out:      `{"type":"result","subtype":"success","is_error":false,"result":"print('hi')","duration_ms":1200,"usage":{"input_tokens":10,"output_tokens":20}}`,
			wantText: "print('hi')",
			wantTok:  30,
		},
		{
			name:     "stream json picks result line",
			out:      "{\"type\":\"system\",\"subtype\":\"init\"}\n{\"type\":\"result\",\"subtype\":\"success\",\"result\":\"x = 1\"}\n",
			wantText: "x = 1",
		},
		{
			name:      "error result",
			out:       `{"type":"result","subtype":"error_max_turns","is_error":true,"result":"limit"}`,
			wantText:  "limit",
			wantIsErr: true,
		},
		{name: "empty", out: "  ", wantErr: true},
		{name: "not json", out: "plain text", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult([]byte(tt.out))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Text != tt.wantText || got.IsError != tt.wantIsErr || got.Tokens != tt.wantTok {
				t.Errorf("ParseResult() = %+v", got)
			}
		})
	}
}

func TestGenerate_FakeCLI(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-only")
	}

	binDir := t.TempDir()
	// Report whether the repair message arrived on stdin.
	writeFakeClaude(t, binDir, `#!/bin/sh
if grep -q "failed validation"; then r=received; else r=missing; fi
printf '{"type":"result","subtype":"success","is_error":false,"result":"%s"}\n' "$r"
`)
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	e := New(engine.Config{Timeout: 5 * time.Second})
	got, err := e.Generate(context.Background(), prompt.Repair{Code: "x", Errors: []string{"e"}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "received" {
		t.Errorf("Generate() should send the user message on stdin, got %q", got)
	}
}

func TestGenerate_FailureIncludesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-only")
	}

	binDir := t.TempDir()
	writeFakeClaude(t, binDir, "#!/bin/sh\necho 'not logged in' >&2\nexit 1\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	_, err := New(engine.Config{Timeout: 5 * time.Second}).Generate(context.Background(), prompt.Draft{})
	if err == nil {
		t.Fatal("Generate() expected error")
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Errorf("error should carry stderr, got %v", err)
	}
}

func TestGenerate_PreservesCanceledContextError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-only")
	}

	binDir := t.TempDir()
	writeFakeClaude(t, binDir, "#!/bin/sh\nsleep 5\nexit 1\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	resp, err := New(engine.Config{Timeout: 10 * time.Second}).Generate(ctx, prompt.Draft{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate() error = %v, want context.Canceled", err)
	}
	if resp != "" {
		t.Fatalf("Generate() response = %q, want empty when canceled", resp)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture is unix-only")
	}

	binDir := t.TempDir()
	writeFakeClaude(t, binDir, "#!/bin/sh\nsleep 5\n")
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	_, err := New(engine.Config{Timeout: 100 * time.Millisecond}).Generate(context.Background(), prompt.Draft{})
	if err == nil || !strings.Contains(err.Error(), "timed out after 100ms") {
		t.Fatalf("Generate() error = %v, want timeout", err)
	}
}

func writeFakeClaude(t *testing.T, dir, script string) {
	t.Helper()

	path := filepath.Join(dir, "claude")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}
