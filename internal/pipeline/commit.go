package pipeline

import (
	"errors"
	"fmt"

	"github.com/jywlabs/lessongen/internal/domain"
	"github.com/jywlabs/lessongen/internal/lesson"
)

// commit is the terminal phase. It writes the candidate only when the last
// validation passed and this is not a dry run.
func (o *Orchestrator) commit(st *State, cfg domain.Config) {
	if !st.Valid {
		st.Status = StatusFailed
		return
	}
	if st.Request.DryRun {
		st.Status = StatusDryRun
		return
	}

	dir := targetDir(st.Request, cfg)
	if dir == "" {
		st.fail(fmt.Sprintf("no output directory: domain %q has no project path and no target directory was given", cfg.Name))
		return
	}

	meta, err := lesson.ParseMetadata(st.Metadata)
	if err != nil {
		st.fail(err.Error())
		return
	}

	path, err := lesson.ResolvePath(dir, meta.Filename)
	if err != nil {
		if errors.Is(err, lesson.ErrPathTraversal) {
			st.fail(lesson.ErrPathTraversal.Error())
			return
		}
		st.fail(err.Error())
		return
	}

	if err := lesson.Write(path, st.Code, st.Request.Force); err != nil {
		if errors.Is(err, lesson.ErrFileExists) {
			st.fail(fmt.Sprintf("file exists: %s", path))
			return
		}
		st.fail(err.Error())
		return
	}

	st.OutputPath = path
	st.Status = StatusCommitted
	o.logger.Info("lesson committed", "path", path, "force", st.Request.Force)
}
