// Package registry provides a global registry for task kinds.
// Task variants register themselves in init() functions, allowing course
// files to name tasks by kind without the loader knowing every variant.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/drivetest/internal/level"
)

// Params holds the numeric parameters of a task as written in a course file.
type Params map[string]float64

// Get returns the named parameter or def when it is absent.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Require returns the named parameter or an error when it is absent.
func (p Params) Require(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	return v, nil
}

// KindInfo contains metadata about a registered task kind.
type KindInfo struct {
	Kind        string
	Description string
	Params      []string // Parameter names accepted by the kind
}

// Factory creates a new task instance worth points.
type Factory func(points float64, params Params) (level.Task, error)

type entry struct {
	info    KindInfo
	factory Factory
}

var (
	kinds = make(map[string]entry)
	mu    sync.RWMutex
)

// Register adds a task factory to the registry.
// Typically called from a variant's init() function.
// Panics if the kind is already registered.
func Register(info KindInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := kinds[info.Kind]; exists {
		panic(fmt.Sprintf("registry: task kind %q already registered", info.Kind))
	}

	kinds[info.Kind] = entry{info: info, factory: f}
}

// List returns information about all registered kinds, sorted by kind.
func List() []KindInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]KindInfo, 0, len(kinds))
	for _, e := range kinds {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// Create instantiates a new task of the given kind.
// Returns an error if the kind is not registered or the parameters are
// rejected by the factory.
func Create(kind string, points float64, params Params) (level.Task, error) {
	mu.RLock()
	e, ok := kinds[kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown task kind %q", kind)
	}

	task, err := e.factory(points, params)
	if err != nil {
		return nil, fmt.Errorf("registry: %s: %w", kind, err)
	}
	return task, nil
}

// Exists checks if a task kind is registered.
func Exists(kind string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := kinds[kind]
	return ok
}
