package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownEngine is returned by New for an unregistered engine name.
var ErrUnknownEngine = errors.New("unknown engine")

// Constructor builds an engine from shared settings.
type Constructor func(cfg Config) (Engine, error)

// engineConstructors maps engine names to their constructors.
// Engines register themselves via RegisterEngine.
var (
	mu                 sync.RWMutex
	engineConstructors = make(map[string]Constructor)
)

// RegisterEngine registers an engine constructor by name.
func RegisterEngine(name string, constructor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	engineConstructors[strings.ToLower(name)] = constructor
}

// New creates an engine by name.
func New(name string, cfg Config) (Engine, error) {
	mu.RLock()
	constructor, ok := engineConstructors[strings.ToLower(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnknownEngine, name, strings.Join(Available(), ", "))
	}
	return constructor(cfg)
}

// Available returns the registered engine names in sorted order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(engineConstructors))
	for name := range engineConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
