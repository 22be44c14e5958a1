package lesson

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrFileExists is returned when a lesson would overwrite an existing file.
	ErrFileExists = errors.New("file exists")
	// ErrPathTraversal is returned when an output path escapes its directory.
	ErrPathTraversal = errors.New("path traversal detected")
)

// ResolvePath joins dir and filename and verifies the result stays inside dir.
// Both paths are made absolute and symlinks in their existing prefixes are
// resolved before the comparison.
func ResolvePath(dir, filename string) (string, error) {
	root, err := canonical(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	target, err := canonical(filepath.Join(root, filename))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", filename, err)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s is outside %s", ErrPathTraversal, target, root)
	}
	return target, nil
}

// canonical returns the absolute, cleaned form of p with symlinks resolved in
// the longest prefix that exists on disk.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	existing := abs
	var rest []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, rest...)...), nil
}

// Write stores content at path, creating parent directories. Unless force is
// set, an existing file is left untouched and ErrFileExists is returned.
func Write(path, content string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create lesson directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		}
		return fmt.Errorf("failed to write lesson: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to write lesson: %w", err)
	}
	return f.Close()
}
