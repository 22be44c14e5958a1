package domain

import (
	"fmt"
	"strings"
)

// PedagogyStyle is the teaching approach used for a domain's lessons.
type PedagogyStyle string

const (
	ConceptFirst     PedagogyStyle = "concept_first"     // DSA, asyncio: doctest-heavy, pure Python
	IntegrationFirst PedagogyStyle = "integration_first" // framework integration patterns
	ApplicationFirst PedagogyStyle = "application_first" // working server/app with tests
)

// PedagogyStyles lists every style in declaration order.
var PedagogyStyles = []PedagogyStyle{ConceptFirst, IntegrationFirst, ApplicationFirst}

func (p PedagogyStyle) String() string { return string(p) }

// Valid reports whether p is one of the declared styles.
func (p PedagogyStyle) Valid() bool {
	switch p {
	case ConceptFirst, IntegrationFirst, ApplicationFirst:
		return true
	}
	return false
}

// ProjectType is the layout of the target learning project.
type ProjectType string

const (
	LessonBased ProjectType = "lesson_based" // numbered NNN_topic.py files
	AppBased    ProjectType = "app_based"    // src/app/ + tests/
)

func (t ProjectType) String() string { return string(t) }

// Valid reports whether t is one of the declared project types.
func (t ProjectType) Valid() bool {
	switch t {
	case LessonBased, AppBased:
		return true
	}
	return false
}

// DoctestPolicy controls how embedded examples are executed during validation.
type DoctestPolicy string

const (
	DoctestDeterministic DoctestPolicy = "deterministic"
	DoctestEllipsis      DoctestPolicy = "ellipsis"
	DoctestSkip          DoctestPolicy = "skip"
)

func (d DoctestPolicy) String() string { return string(d) }

// Valid reports whether d is one of the declared policies.
func (d DoctestPolicy) Valid() bool {
	switch d {
	case DoctestDeterministic, DoctestEllipsis, DoctestSkip:
		return true
	}
	return false
}

// ParsePedagogyStyle converts a config string into a PedagogyStyle.
func ParsePedagogyStyle(s string) (PedagogyStyle, error) {
	p := PedagogyStyle(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid pedagogy style %q", s)
	}
	return p, nil
}

// ParseProjectType converts a config string into a ProjectType.
func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid project type %q", s)
	}
	return t, nil
}

// ParseDoctestPolicy converts a config string into a DoctestPolicy.
// An empty string yields DoctestDeterministic.
func ParseDoctestPolicy(s string) (DoctestPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DoctestDeterministic, nil
	}
	d := DoctestPolicy(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid doctest policy %q", s)
	}
	return d, nil
}

// DefaultLessonDir is used when a domain does not set LessonDir.
const DefaultLessonDir = "src/"

// Config describes one content-generation domain. It is registered once and
// treated as read-only afterwards.
type Config struct {
	Name        string
	Pedagogy    PedagogyStyle
	ProjectType ProjectType
	// ProjectPath is the root of the target learning project. Empty means the
	// caller must supply an explicit output directory.
	ProjectPath  string
	LessonDir    string
	TemplatePath string // relative to ProjectPath
	SourceRefs   map[string]string
	StrictTypes  bool
	Doctest      DoctestPolicy
}

// LessonRoot returns ProjectPath joined with LessonDir, or "" when the domain
// has no project path.
func (c Config) LessonRoot() string {
	if c.ProjectPath == "" {
		return ""
	}
	dir := c.LessonDir
	if dir == "" {
		dir = DefaultLessonDir
	}
	return joinClean(c.ProjectPath, dir)
}
