package domain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound indicates the requested domain is not registered.
var ErrNotFound = errors.New("domain not found")

// Registry maps domain names to their configuration.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{domains: make(map[string]Config)}
}

// Register inserts cfg, replacing any domain with the same name.
// Missing LessonDir and Doctest values are filled with their defaults.
func (r *Registry) Register(cfg Config) {
	if cfg.LessonDir == "" {
		cfg.LessonDir = DefaultLessonDir
	}
	if cfg.Doctest == "" {
		cfg.Doctest = DoctestDeterministic
	}
	refs := make(map[string]string, len(cfg.SourceRefs))
	for k, v := range cfg.SourceRefs {
		refs[k] = v
	}
	cfg.SourceRefs = refs

	r.mu.Lock()
	r.domains[cfg.Name] = cfg
	r.mu.Unlock()
}

// Get returns the domain registered under name.
func (r *Registry) Get(name string) (Config, error) {
	r.mu.RLock()
	cfg, ok := r.domains[name]
	r.mu.RUnlock()
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown domain %q (available: %s)",
			ErrNotFound, name, strings.Join(r.Names(), ", "))
	}
	return cfg, nil
}

// Names returns all registered domain names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.domains))
	for name := range r.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateEnvironment checks that a domain's project root exists on disk.
// A domain without a project root is accepted; the caller must then provide
// an explicit output directory.
func ValidateEnvironment(cfg Config) error {
	if cfg.ProjectPath == "" {
		return nil
	}
	info, err := os.Stat(cfg.ProjectPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("target project not found at %s; use --out to specify an explicit output path", cfg.ProjectPath)
	}
	return nil
}

func joinClean(elem ...string) string {
	return filepath.Clean(filepath.Join(elem...))
}
