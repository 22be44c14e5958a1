// Package validate runs the static-quality battery against a candidate
// lesson and folds every tool's complaints into one verdict.
package validate

// Tool names recorded in Result.ToolsRun.
const (
	ToolCompile = "compile"
	ToolFormat  = "ruff_format"
	ToolLint    = "ruff"
	ToolTypes   = "mypy"
	ToolDoctest = "pytest"
)

// Result is the outcome of one validation pass. Valid is true exactly when
// Errors is empty.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	ToolsRun []string `json:"tools_run"`
	// NormalizedCode is the formatter's output when it differs from the
	// input; empty when formatting changed nothing.
	NormalizedCode string `json:"normalized_code,omitempty"`
}

func newResult(errors, toolsRun []string, normalized string) Result {
	if errors == nil {
		errors = []string{}
	}
	if toolsRun == nil {
		toolsRun = []string{}
	}
	return Result{
		Valid:          len(errors) == 0,
		Errors:         errors,
		ToolsRun:       toolsRun,
		NormalizedCode: normalized,
	}
}
