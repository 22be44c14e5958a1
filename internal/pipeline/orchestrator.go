package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/lesson"
	"github.com/jywlabs/lessongen/internal/prompt"
	"github.com/jywlabs/lessongen/internal/template"
	"github.com/jywlabs/lessongen/internal/validate"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lessongen.pipeline")

// ErrNoOutputDir is returned by Run when a request that would write has
// nowhere to write to.
var ErrNoOutputDir = errors.New("no output directory")

// Generator turns a structured request into response text.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request) (string, error)
}

// Validator checks a candidate against a domain's quality policy.
type Validator interface {
	Validate(ctx context.Context, code string, cfg domain.Config) (validate.Result, error)
}

// Observer is notified as a run progresses. Calls come from the goroutine
// executing Run.
type Observer interface {
	PhaseStarted(phase string, iteration, maxIterations int)
	Validated(valid bool, errs []string)
}

// Orchestrator runs the generate, validate and repair loop.
type Orchestrator struct {
	registry  *domain.Registry
	generator Generator
	validator Validator
	observer  Observer
	logger    *slog.Logger
	checker   *validator.Validate
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator. The registry is only read.
func New(reg *domain.Registry, gen Generator, val Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:  reg,
		generator: gen,
		validator: val,
		logger:    slog.Default(),
		checker:   validator.New(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one request end to end. Configuration problems (an invalid
// request, an unknown domain, no output directory for a request that
// writes) are returned as errors before any generation.
// Every later failure is reported through the returned State's Status and
// Errors, and the error is nil.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*State, error) {
	if err := o.checker.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	cfg, err := o.registry.Get(req.Domain)
	if err != nil {
		return nil, err
	}
	if !req.DryRun && targetDir(req, cfg) == "" {
		return nil, fmt.Errorf("%w: domain %q has no project path and no target directory was given", ErrNoOutputDir, cfg.Name)
	}

	ctx, span := tracer.Start(ctx, "Orchestrator.Run", trace.WithAttributes(
		attribute.String("lesson.domain", req.Domain),
		attribute.String("lesson.topic", req.Topic),
	))
	defer span.End()

	st := &State{Request: req}
	logger := o.logger.With("domain", req.Domain, "topic", req.Topic)

	if err := o.loadContext(st, cfg); err != nil {
		span.RecordError(err)
		return nil, err
	}

	o.generate(ctx, st, cfg, logger)
	if st.Status != StatusFailed {
		for {
			o.validate(ctx, st, cfg, logger)
			if st.Status == StatusFailed || !o.shouldRepair(st) {
				break
			}
			o.repair(ctx, st, logger)
			if st.Status == StatusFailed {
				break
			}
		}
	}

	if st.Status != StatusFailed {
		o.notify(PhaseCommit, st)
		o.commit(st, cfg)
	}

	span.SetAttributes(
		attribute.String("lesson.status", string(st.Status)),
		attribute.Int("lesson.iterations", st.Iteration),
	)
	logger.Info("pipeline finished",
		"status", st.Status,
		"iterations", st.Iteration,
		"errors", len(st.Errors),
		"output", st.OutputPath,
	)
	return st, nil
}

// loadContext reads the template and existing lessons and resets the counter.
func (o *Orchestrator) loadContext(st *State, cfg domain.Config) error {
	tmpl, err := template.Load(cfg)
	if err != nil {
		return fmt.Errorf("failed to load template for %s: %w", cfg.Name, err)
	}
	dir := targetDir(st.Request, cfg)
	var existing []string
	if dir != "" {
		existing, err = lesson.ListExisting(dir)
		if err != nil {
			return fmt.Errorf("failed to list lessons in %s: %w", dir, err)
		}
	}

	st.Template = tmpl
	st.Existing = existing
	st.Iteration = 0
	st.Status = StatusPending
	return nil
}

func (o *Orchestrator) generate(ctx context.Context, st *State, cfg domain.Config, logger *slog.Logger) {
	o.notify(PhaseGenerate, st)
	ctx, span := tracer.Start(ctx, "Orchestrator.generate")
	defer span.End()

	number := 1
	if dir := targetDir(st.Request, cfg); dir != "" {
		n, err := lesson.NextNumber(dir)
		if err != nil {
			st.fail(fmt.Sprintf("generate: %v", err))
			return
		}
		number = n
	}
	filename := lesson.DeriveFilename(number, st.Request.Topic)

	text, err := o.generator.Generate(ctx, prompt.Draft{
		Template:   st.Template,
		Existing:   st.Existing,
		Number:     number,
		Filename:   filename,
		Topic:      st.Request.Topic,
		Domain:     cfg.Name,
		SourceRefs: cfg.SourceRefs,
	})
	if err != nil {
		span.RecordError(err)
		logger.Error("generation failed", "error", err)
		st.fail(fmt.Sprintf("generate: %v", err))
		return
	}

	meta, err := lesson.NewMetadata(number, st.Request.Topic, filename).Marshal()
	if err != nil {
		st.fail(fmt.Sprintf("generate: %v", err))
		return
	}

	st.Code = lesson.StripFences(text)
	st.Metadata = meta
	st.Filename = filename
	st.Status = StatusGenerated
	logger.Debug("lesson generated", "filename", filename, "bytes", len(st.Code))
}

func (o *Orchestrator) validate(ctx context.Context, st *State, cfg domain.Config, logger *slog.Logger) {
	o.notify(PhaseValidate, st)

	res, err := o.validator.Validate(ctx, st.Code, cfg)
	if err != nil {
		logger.Error("validation could not run", "error", err)
		st.fail(fmt.Sprintf("validate: %v", err))
		return
	}

	st.Valid = res.Valid
	st.Errors = res.Errors
	st.ToolsRun = res.ToolsRun
	st.NormalizedCode = res.NormalizedCode
	if o.observer != nil {
		o.observer.Validated(res.Valid, res.Errors)
	}
	logger.Debug("lesson validated",
		"iteration", st.Iteration,
		"valid", res.Valid,
		"errors", len(res.Errors),
	)
}

// shouldRepair decides the next step after validation. An invalid lesson
// that has used up its attempts still goes to commit, which reports failure.
func (o *Orchestrator) shouldRepair(st *State) bool {
	if st.Valid {
		return false
	}
	return st.Iteration < st.maxIterations()
}

func (o *Orchestrator) repair(ctx context.Context, st *State, logger *slog.Logger) {
	o.notify(PhaseRepair, st)
	ctx, span := tracer.Start(ctx, "Orchestrator.repair", trace.WithAttributes(
		attribute.Int("lesson.iteration", st.Iteration+1),
	))
	defer span.End()

	text, err := o.generator.Generate(ctx, prompt.Repair{Code: st.Code, Errors: st.Errors})
	if err != nil {
		span.RecordError(err)
		logger.Error("repair failed", "iteration", st.Iteration+1, "error", err)
		st.fail(append(st.Errors, fmt.Sprintf("repair: %v", err))...)
		return
	}

	st.Code = lesson.StripFences(text)
	st.Iteration++
}

func (o *Orchestrator) notify(phase Phase, st *State) {
	if o.observer != nil {
		o.observer.PhaseStarted(string(phase), st.Iteration, st.maxIterations())
	}
}

// targetDir returns the directory lessons for req land in, or "" when
// neither an override nor a project root is configured.
func targetDir(req Request, cfg domain.Config) string {
	if req.TargetDir != "" {
		return req.TargetDir
	}
	return cfg.LessonRoot()
}
