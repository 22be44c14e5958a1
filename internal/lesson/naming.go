package lesson

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// reservedPrefix marks module-init and cache entries that never count as lessons.
const reservedPrefix = "__"

// fallbackSlug replaces a topic that sanitizes to nothing.
const fallbackSlug = "lesson"

// ListExisting returns the lesson files under dir, relative to dir and using
// forward slashes, in lexicographic order. A missing directory yields an empty list.
func ListExisting(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read lesson directory: %w", err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	files := []string{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		if strings.HasPrefix(d.Name(), reservedPrefix) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != Ext {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons in %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// NextNumber returns one more than the highest leading sequence number among
// the lessons in dir, or 1 when none are numbered.
func NextNumber(dir string) (int, error) {
	files, err := ListExisting(dir)
	if err != nil {
		return 0, err
	}
	return nextFromNames(files), nil
}

func nextFromNames(files []string) int {
	max := 0
	for _, f := range files {
		if n, ok := leadingNumber(path.Base(f)); ok && n > max {
			max = n
		}
	}
	return max + 1
}

// leadingNumber parses the run of decimal digits at the start of name.
func leadingNumber(name string) (int, bool) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Slugify lower-cases topic and reduces it to [a-z0-9_], collapsing and
// trimming underscores. The result never contains a path separator or "..".
func Slugify(topic string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(topic) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// DeriveFilename formats the lesson filename: NNN_slug.py.
func DeriveFilename(number int, topic string) string {
	slug := Slugify(topic)
	if slug == "" {
		slug = fallbackSlug
	}
	return fmt.Sprintf("%03d_%s%s", number, slug, Ext)
}
