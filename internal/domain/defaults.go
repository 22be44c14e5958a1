package domain

import (
	"os"
	"path/filepath"
)

// StudyRootEnv overrides the default study root used by the built-in domains.
const StudyRootEnv = "LESSON_STUDY_ROOT"

// DefaultStudyRoot returns $LESSON_STUDY_ROOT, or ~/study/python.
func DefaultStudyRoot() string {
	if root := os.Getenv(StudyRootEnv); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("study", "python")
	}
	return filepath.Join(home, "study", "python")
}

// RegisterDefaults installs the built-in domains rooted at studyRoot.
func RegisterDefaults(reg *Registry, studyRoot string) {
	cpython := cpythonPath(studyRoot)

	reg.Register(Config{
		Name:         "dsa",
		Pedagogy:     ConceptFirst,
		ProjectType:  LessonBased,
		ProjectPath:  filepath.Join(studyRoot, "learning-dsa"),
		LessonDir:    "src/algorithms",
		TemplatePath: "notes/lesson_template.py",
		SourceRefs:   map[string]string{"cpython": cpython},
		StrictTypes:  true,
		Doctest:      DoctestDeterministic,
	})

	reg.Register(Config{
		Name:         "asyncio",
		Pedagogy:     ConceptFirst,
		ProjectType:  LessonBased,
		ProjectPath:  filepath.Join(studyRoot, "learning-asyncio"),
		LessonDir:    "src",
		TemplatePath: "notes/lesson_template.py",
		SourceRefs:   map[string]string{"cpython": cpython},
		StrictTypes:  true,
		Doctest:      DoctestEllipsis,
	})
}

// cpythonPath places the cpython checkout next to the python study root
// (…/study/python -> …/study/c/cpython).
func cpythonPath(studyRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(studyRoot)), "c", "cpython")
}
