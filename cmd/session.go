package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jywlabs/lessongen/internal/config"
	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/history"
	"github.com/jywlabs/lessongen/internal/logger"
	"github.com/jywlabs/lessongen/internal/pipeline"
	"github.com/jywlabs/lessongen/internal/validate"
)

// session holds what every lesson-producing command needs.
type session struct {
	dir      string
	cfg      *config.Config
	registry *domain.Registry
	logger   *slog.Logger
	closeLog func() error
}

// openSession loads configuration from dir, builds the domain registry and
// starts the file logger. A logger that cannot be opened is not fatal.
func openSession(dir string) (*session, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	l, closeLog, err := logger.Setup(logger.Config{Root: dir, Debug: debugFlag})
	if err != nil {
		closeLog = func() error { return nil }
	}
	slog.SetDefault(l)

	return &session{dir: dir, cfg: cfg, registry: reg, logger: l, closeLog: closeLog}, nil
}

func (s *session) Close() error {
	return s.closeLog()
}

// newValidator builds the validation aggregator from configuration.
func (s *session) newValidator() *validate.Validator {
	return validate.New(
		validate.WithPython(s.cfg.Python),
		validate.WithTimeout(s.cfg.ToolTimeout),
		validate.WithLogger(s.logger),
	)
}

// record stores finished runs in the history database. Failures are logged
// and otherwise ignored.
func (s *session) record(ctx context.Context, engineName string, runs ...history.Run) {
	if len(runs) == 0 {
		return
	}
	store, err := history.Open(ctx, s.cfg.HistoryDSNFor(s.dir))
	if err != nil {
		s.logger.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	for _, run := range runs {
		run.Engine = engineName
		if _, err := store.Record(ctx, run); err != nil {
			s.logger.Warn("failed to record run", "topic", run.Topic, "error", err)
		}
	}
}

// historyRun converts a finished pipeline state into a history record.
func historyRun(st *pipeline.State, started, finished time.Time) history.Run {
	return history.Run{
		Topic:      st.Request.Topic,
		Domain:     st.Request.Domain,
		Status:     string(st.Status),
		Iterations: st.Iteration,
		OutputPath: st.OutputPath,
		Errors:     st.Errors,
		StartedAt:  started,
		FinishedAt: finished,
	}
}

// resolveTargetDir picks the directory a lesson is written to: the parent of
// an explicit output file, or the domain's lesson root after checking that
// the project exists.
func resolveTargetDir(cfg domain.Config, out string) (string, error) {
	if out != "" {
		return filepath.Dir(out), nil
	}
	if cfg.ProjectPath == "" {
		return "", fmt.Errorf("domain %q has no project path; use --out to specify an output location", cfg.Name)
	}
	if err := domain.ValidateEnvironment(cfg); err != nil {
		return "", err
	}
	return cfg.LessonRoot(), nil
}
