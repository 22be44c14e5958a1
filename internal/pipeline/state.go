// Package pipeline drives one lesson from topic to committed file:
// load context, generate, validate, repair until valid or out of attempts,
// then commit.
package pipeline

// Status is the lifecycle tag of a pipeline run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusGenerated Status = "generated"
	StatusCommitted Status = "committed"
	StatusDryRun    Status = "dry_run"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s ends a run.
func (s Status) Terminal() bool {
	switch s {
	case StatusCommitted, StatusDryRun, StatusFailed:
		return true
	case StatusPending, StatusGenerated:
		return false
	default:
		return false
	}
}

// Phase names a step of the state machine.
type Phase string

const (
	PhaseLoadContext Phase = "load_context"
	PhaseGenerate    Phase = "generate"
	PhaseValidate    Phase = "validate"
	PhaseRepair      Phase = "repair"
	PhaseCommit      Phase = "commit"
)

// DefaultMaxIterations is the repair cap callers use when the user sets none.
const DefaultMaxIterations = 3

// Request is the input of one run.
type Request struct {
	Topic  string `validate:"required" yaml:"topic"`
	Domain string `validate:"required" yaml:"domain"`
	// TargetDir overrides the domain's lesson directory.
	TargetDir string `yaml:"target_dir"`
	// MaxIterations caps repair attempts; 0 commits or fails the first draft.
	MaxIterations int  `validate:"gte=0" yaml:"max_iterations"`
	DryRun        bool `yaml:"dry_run"`
	Force         bool `yaml:"force"`
}

// State is the record threaded through one run. It is owned by that run
// and never shared.
type State struct {
	Request Request

	Template string
	Existing []string

	// Code is the current candidate.
	Code string
	// Metadata is the serialized lesson.Metadata of the current candidate.
	Metadata string
	Filename string

	Valid          bool
	Errors         []string
	ToolsRun       []string
	NormalizedCode string

	// Iteration counts repair attempts.
	Iteration  int
	OutputPath string
	Status     Status
}

// maxIterations returns the repair cap.
func (s *State) maxIterations() int {
	return s.Request.MaxIterations
}

// fail marks the run failed with errs as its error list.
func (s *State) fail(errs ...string) {
	s.Status = StatusFailed
	s.Valid = false
	s.Errors = errs
}
