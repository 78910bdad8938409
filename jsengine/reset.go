// Package jsengine models the embedder-facing JavaScript-engine pool
// switcher spec.md §6 and §9 describe: a process-wide registry of named
// engine factories plus a default name, with a single idempotent Reset
// hook. The core never calls Reset from its own execution path — it is
// exposed purely for embedder reconfiguration between runs.
package jsengine

import "sync"

// Factory constructs a JavaScript engine instance. The core treats
// engines as fully opaque; only the embedder's own modules ever call a
// registered Factory.
type Factory func() (any, error)

var (
	mu          sync.Mutex
	factories   = map[string]Factory{}
	defaultName string
)

// Register adds or replaces a named engine factory.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// SetDefault designates which registered factory New uses when no name
// is given.
func SetDefault(name string) {
	mu.Lock()
	defer mu.Unlock()
	defaultName = name
}

// New constructs an engine instance from the named factory, or from the
// default factory if name is empty.
func New(name string) (any, error) {
	mu.Lock()
	defer mu.Unlock()

	if name == "" {
		name = defaultName
	}
	factory, ok := factories[name]
	if !ok {
		return nil, errUnknownEngine(name)
	}
	return factory()
}

// Reset clears every registered factory and the default name, restoring
// the registry to its zero state. The registry is process-wide package
// state behind package-level functions, the same global-singleton shape
// the pack's viper dependency uses for its own package-level default
// instance.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	factories = map[string]Factory{}
	defaultName = ""
}

type errUnknownEngine string

func (e errUnknownEngine) Error() string {
	return "jsengine: no factory registered for " + string(e)
}
