package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jywlabs/lessongen/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultTimeout bounds each external tool.
const DefaultTimeout = 120 * time.Second

// lessonFile is the name the candidate takes inside the scratch directory.
const lessonFile = "lesson.py"

// pytest exits 5 when it collected nothing; a lesson without doctests is fine.
const pytestNoTestsCollected = 5

// Validator runs the tool battery. The zero value is not usable; use New.
type Validator struct {
	python  string
	timeout time.Duration
	runner  Runner
	logger  *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithPython sets the interpreter used to invoke every tool module.
func WithPython(python string) Option {
	return func(v *Validator) {
		if python != "" {
			v.python = python
		}
	}
}

// WithTimeout sets the per-tool timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(v *Validator) {
		if r != nil {
			v.runner = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		python:  "python3",
		timeout: DefaultTimeout,
		runner:  ExecRunner{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// pass accumulates the state of one Validate call.
type pass struct {
	v        *Validator
	dir      string
	path     string
	errors   []string
	toolsRun []string
}

// Validate checks code against the domain's policy. Tool findings land in
// the Result; the returned error is reserved for failures of the
// validation machinery itself, such as an unwritable scratch directory.
func (v *Validator) Validate(ctx context.Context, code string, cfg domain.Config) (Result, error) {
	start := time.Now()
	ctx, span := startValidateSpan(ctx, cfg.Name)
	defer span.End()

	res, err := v.validate(ctx, code, cfg)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	setValidateSpanResult(span, res)
	recordValidateMetrics(ctx, cfg.Name, time.Since(start), res.Valid)
	v.logger.Debug("validation finished",
		"domain", cfg.Name,
		"valid", res.Valid,
		"errors", len(res.Errors),
		"tools", strings.Join(res.ToolsRun, ","),
		"duration", time.Since(start),
	)
	return res, nil
}

func (v *Validator) validate(ctx context.Context, code string, cfg domain.Config) (Result, error) {
	p := &pass{v: v}

	// Syntax gate: nothing else is meaningful on code that does not parse.
	// The parse tree gives a cheap answer without starting a process.
	p.toolsRun = append(p.toolsRun, ToolCompile)
	syntaxErrs, err := CheckSyntax(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("syntax check: %w", err)
	}
	if len(syntaxErrs) > 0 {
		p.fail(ctx, ToolCompile, syntaxMessage(syntaxErrs))
		return newResult(p.errors, p.toolsRun, ""), nil
	}

	dir, err := os.MkdirTemp("", "lessongen-validate-*")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	p.dir = dir
	p.path = filepath.Join(dir, lessonFile)
	if err := os.WriteFile(p.path, []byte(code), 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write candidate: %w", err)
	}

	// The grammar above is looser than the interpreter's own compiler
	// (print statements, module-level return), so the interpreter has the
	// final word before any other tool runs.
	if p.compile(ctx) {
		return newResult(p.errors, p.toolsRun, ""), nil
	}

	normalized, stop := p.format(ctx, code)
	if stop {
		return newResult(p.errors, p.toolsRun, normalized), nil
	}

	steps := []struct {
		tool  string
		label string
		args  []string
		ok    func(Output) bool
		skip  bool
	}{
		{
			tool:  ToolLint,
			label: "ruff",
			args:  []string{"-m", "ruff", "check", lessonFile},
			ok:    exitZero,
		},
		{
			tool:  ToolTypes,
			label: "mypy",
			args:  mypyArgs(cfg.StrictTypes),
			ok:    exitZero,
		},
		{
			tool:  ToolDoctest,
			label: "pytest",
			args:  pytestArgs(cfg.Doctest),
			ok: func(out Output) bool {
				return out.ExitCode == 0 || out.ExitCode == pytestNoTestsCollected
			},
			skip: cfg.Doctest == domain.DoctestSkip,
		},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		p.toolsRun = append(p.toolsRun, step.tool)
		out, err := p.run(ctx, step.tool, step.args...)
		if errors.Is(err, ErrTimeout) {
			p.fail(ctx, step.tool, fmt.Sprintf("%s: timed out after %s", step.label, formatSeconds(v.timeout)))
			return newResult(p.errors, p.toolsRun, normalized), nil
		}
		if err != nil {
			p.fail(ctx, step.tool, fmt.Sprintf("%s: %v", step.tool, err))
			continue
		}
		if !step.ok(out) {
			p.fail(ctx, step.tool, toolMessage(step.tool, out))
		}
	}

	return newResult(p.errors, p.toolsRun, normalized), nil
}

// compileScript byte-compiles argv[1] and prints the first syntax error in
// the same shape as SyntaxError.String.
const compileScript = `import sys
path = sys.argv[1]
with open(path, encoding="utf-8") as f:
    src = f.read()
try:
    compile(src, path, "exec")
except SyntaxError as e:
    print(f"line {e.lineno or 1}, column {max((e.offset or 1) - 1, 0)}: {e.msg}")
    sys.exit(1)
`

// compile runs the interpreter's compiler over the candidate. stop is true
// when the candidate does not compile or the compiler timed out.
func (p *pass) compile(ctx context.Context) (stop bool) {
	out, err := p.run(ctx, ToolCompile, "-c", compileScript, lessonFile)
	if errors.Is(err, ErrTimeout) {
		p.fail(ctx, ToolCompile, fmt.Sprintf("compile: timed out after %s", formatSeconds(p.v.timeout)))
		return true
	}
	if err != nil {
		p.fail(ctx, ToolCompile, fmt.Sprintf("%s: %v", ToolCompile, err))
		return false
	}
	if out.ExitCode == 0 {
		return false
	}
	p.fail(ctx, ToolCompile, "Syntax error: "+compileMessage(out))
	return true
}

// compileMessage picks the reported error out of a failed compile run.
// Errors other than SyntaxError escape the script as a traceback whose
// last line names the exception.
func compileMessage(out Output) string {
	if msg := strings.TrimSpace(out.Stdout); msg != "" {
		return msg
	}
	stderr := strings.TrimSpace(out.Stderr)
	if i := strings.LastIndexByte(stderr, '\n'); i >= 0 {
		stderr = stderr[i+1:]
	}
	if stderr == "" {
		return fmt.Sprintf("compiler exited with status %d", out.ExitCode)
	}
	return stderr
}

// format runs the formatter and reports the rewritten source when it
// changed. The formatter's exit status is not a finding; its complaints
// surface again through the linter. stop is true on timeout.
func (p *pass) format(ctx context.Context, code string) (normalized string, stop bool) {
	p.toolsRun = append(p.toolsRun, ToolFormat)
	_, err := p.run(ctx, ToolFormat, "-m", "ruff", "format", lessonFile)
	if errors.Is(err, ErrTimeout) {
		p.fail(ctx, ToolFormat, fmt.Sprintf("ruff format: timed out after %s", formatSeconds(p.v.timeout)))
		return "", true
	}
	if err != nil {
		p.fail(ctx, ToolFormat, fmt.Sprintf("%s: %v", ToolFormat, err))
		return "", false
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		p.fail(ctx, ToolFormat, fmt.Sprintf("%s: %v", ToolFormat, err))
		return "", false
	}
	if string(data) != code {
		return string(data), false
	}
	return "", false
}

func (p *pass) run(ctx context.Context, tool string, args ...string) (Output, error) {
	ctx, span := startToolSpan(ctx, tool)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.v.timeout)
	defer cancel()

	out, err := p.v.runner.Run(ctx, p.dir, p.v.python, args...)
	if err != nil {
		span.RecordError(err)
	} else {
		span.SetAttributes(attribute.Int("tool.exit_code", out.ExitCode))
	}
	return out, err
}

func (p *pass) fail(ctx context.Context, tool, msg string) {
	p.errors = append(p.errors, msg)
	recordToolError(ctx, tool)
	p.v.logger.Debug("tool reported errors", "tool", tool)
}

func exitZero(out Output) bool { return out.ExitCode == 0 }

func mypyArgs(strict bool) []string {
	args := []string{"-m", "mypy"}
	if strict {
		args = append(args, "--strict")
	}
	return append(args, lessonFile)
}

func pytestArgs(policy domain.DoctestPolicy) []string {
	args := []string{"-m", "pytest", "--doctest-modules", "-q"}
	switch policy {
	case "", domain.DoctestDeterministic, domain.DoctestSkip:
	case domain.DoctestEllipsis:
		args = append(args, "-o", "doctest_optionflags=ELLIPSIS NORMALIZE_WHITESPACE")
	default:
		panic(fmt.Sprintf("validate: unhandled doctest policy %q", policy))
	}
	return append(args, lessonFile)
}

// toolMessage renders a failing tool's output as one error string.
func toolMessage(tool string, out Output) string {
	msg := tool + ": " + strings.TrimSpace(out.Stdout)
	if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
		msg += "\nstderr: " + stderr
	}
	return msg
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%gs", d.Seconds())
}
