package prompt

import (
	"strings"
	"testing"
)

func TestDraft(t *testing.T) {
	tests := []struct {
		name       string
		draft      Draft
		wantSystem []string
		wantUser   []string
		notSystem  []string
	}{
		{
			name: "first lesson",
			draft: Draft{
				Template: "# TEMPLATE BODY",
				Number:   1,
				Filename: "001_binary_search.py",
				Topic:    "binary search",
				Domain:   "dsa",
			},
			wantSystem: []string{
				"# TEMPLATE BODY",
				"EXISTING LESSONS in this project (avoid overlap):\n(none)",
				"The lesson number is 1 and filename is 001_binary_search.py.",
				"from __future__ import annotations",
			},
			wantUser: []string{
				"Python lesson on: binary search",
				"Domain: dsa",
				"Return ONLY valid Python source code",
			},
			notSystem: []string{"REFERENCE MATERIAL"},
		},
		{
			name: "existing lessons and refs",
			draft: Draft{
				Template:   "tmpl",
				Existing:   []string{"001_a.py", "sorting/002_b.py"},
				Number:     3,
				Filename:   "003_heaps.py",
				Topic:      "heaps",
				Domain:     "dsa",
				SourceRefs: map[string]string{"cpython": "/src/cpython", "book": "/books/clrs"},
			},
			wantSystem: []string{
				"001_a.py\nsorting/002_b.py",
				"REFERENCE MATERIAL (cite where helpful):\n- book: /books/clrs\n- cpython: /src/cpython",
			},
			notSystem: []string{"(none)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := tt.draft.System()
			user := tt.draft.User()
			for _, want := range tt.wantSystem {
				if !strings.Contains(sys, want) {
					t.Errorf("System() missing %q\nGot:\n%s", want, sys)
				}
			}
			for _, want := range tt.wantUser {
				if !strings.Contains(user, want) {
					t.Errorf("User() missing %q\nGot:\n%s", want, user)
				}
			}
			for _, bad := range tt.notSystem {
				if strings.Contains(sys, bad) {
					t.Errorf("System() should not contain %q", bad)
				}
			}
		})
	}
}

func TestRepair(t *testing.T) {
	r := Repair{
		Code:   "def f() -> int:\n    return 'x'\n",
		Errors: []string{"mypy: incompatible return value", "ruff: E501"},
	}

	user := r.User()
	for _, want := range []string{
		"`````python\ndef f() -> int:\n    return 'x'\n\n`````",
		"Errors:\nmypy: incompatible return value\nruff: E501\n",
		"Do NOT wrap the output",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("User() missing %q\nGot:\n%s", want, user)
		}
	}
	if !strings.Contains(r.System(), "failed validation") {
		t.Errorf("System() should describe the repair task")
	}
}

func TestText(t *testing.T) {
	d := Draft{Topic: "queues", Domain: "dsa"}
	got := Text(d)
	if !strings.HasPrefix(got, d.System()) || !strings.HasSuffix(got, d.User()) {
		t.Errorf("Text() should join system and user messages, got:\n%s", got)
	}
}

func TestFormatExisting(t *testing.T) {
	if got := FormatExisting(nil); got != NoExistingLessons {
		t.Errorf("FormatExisting(nil) = %q, want %q", got, NoExistingLessons)
	}
	if got := FormatExisting([]string{"a.py", "b.py"}); got != "a.py\nb.py" {
		t.Errorf("FormatExisting() = %q", got)
	}
}
