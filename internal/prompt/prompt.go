// Package prompt renders the draft and repair requests sent to a
// text-generation engine.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// NoExistingLessons stands in for an empty lesson listing.
const NoExistingLessons = "(none)"

// Request is a structured generation request. Engines that distinguish
// roles send System and User separately; the rest send Text.
type Request interface {
	System() string
	User() string
}

// Text flattens a request for engines that accept a single prompt.
func Text(r Request) string {
	return r.System() + "\n\n---\n\n" + r.User()
}

const conventions = `CONVENTIONS (must follow):
- Use ` + "`from __future__ import annotations`" + ` at the top
- Use namespace imports for stdlib: ` + "`import typing as t`, `import pathlib`" + `, etc.
- Exception: ` + "`from dataclasses import dataclass, field`" + ` is OK
- NumPy-style docstrings on all public functions
- Type hints on all functions (mypy --strict compatible)
- Include doctests in Examples sections
- Ensure ` + "`pytest --doctest-modules`" + ` passes
- Keep lessons self-contained and runnable
- Include a ` + "`main()`" + ` function and ` + "`if __name__ == '__main__'`" + ` guard`

const outputRules = `OUTPUT RULES:
1. Return ONLY valid Python source code
2. Do NOT wrap the output in markdown code fences (no ` + "```" + ` or ` + "```python" + `)
3. The first line must be a Python docstring or comment`

// fence is longer than anything a lesson template or candidate is
// expected to contain, so embedded triple backticks survive.
const fence = "`````"

// Draft asks for a brand new lesson.
type Draft struct {
	Template string
	Existing []string
	Number   int
	Filename string
	Topic    string
	Domain   string
	// SourceRefs names reference material the lesson may point readers to.
	SourceRefs map[string]string
}

// System implements Request.
func (d Draft) System() string {
	var b strings.Builder
	b.WriteString("You are an expert Python instructor creating learning content.\n\n")
	b.WriteString(conventions)
	b.WriteString("\n\nTEMPLATE (follow this structure):\n")
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", fence, d.Template, fence)
	b.WriteString("EXISTING LESSONS in this project (avoid overlap):\n")
	b.WriteString(FormatExisting(d.Existing))
	b.WriteString("\n\n")
	if len(d.SourceRefs) > 0 {
		b.WriteString("REFERENCE MATERIAL (cite where helpful):\n")
		b.WriteString(formatRefs(d.SourceRefs))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "The lesson number is %d and filename is %s.", d.Number, d.Filename)
	return b.String()
}

// User implements Request.
func (d Draft) User() string {
	return fmt.Sprintf("Generate a complete, self-contained Python lesson on: %s\n\nDomain: %s\n\n%s",
		d.Topic, d.Domain, outputRules)
}

// Repair asks for a fixed version of a candidate that failed validation.
type Repair struct {
	Code   string
	Errors []string
}

// System implements Request.
func (r Repair) System() string {
	return `You are fixing a Python lesson that failed validation.

CONVENTIONS (same as original):
- ` + "`from __future__ import annotations`" + ` at the top
- Namespace imports for stdlib
- NumPy-style docstrings
- Type hints (mypy --strict compatible)
- Doctests must pass under ` + "`pytest --doctest-modules`" + `
`
}

// User implements Request.
func (r Repair) User() string {
	return fmt.Sprintf("The following code failed validation:\n\n%spython\n%s\n%s\n\nErrors:\n%s\n\n%s",
		fence, r.Code, fence, JoinErrors(r.Errors), outputRules)
}

// FormatExisting renders the existing-lesson listing, one per line.
func FormatExisting(existing []string) string {
	if len(existing) == 0 {
		return NoExistingLessons
	}
	return strings.Join(existing, "\n")
}

// JoinErrors renders validation errors one per line.
func JoinErrors(errs []string) string {
	return strings.Join(errs, "\n")
}

func formatRefs(refs map[string]string) string {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("- %s: %s", name, refs[name])
	}
	return strings.Join(lines, "\n")
}
