package engine

import (
	"strings"
	"sync"

	"github.com/sitepipe/pipeline/core"
)

// DocumentStore is the Shared Document Store (spec.md §4.6): a
// concurrent mapping, keyed case-insensitively by pipeline name, from
// name to the most recent Process-phase output of that pipeline.
// Writers are Process phase nodes, exactly once per run; readers are
// Transform- and Output-phase modules via the core.DocumentStoreReader
// view. The pack contains no third-party concurrent-map library, so this
// one component stays on sync.RWMutex plus a plain map — the same shape
// the teacher uses for its own runtime state in pipeline.go's
// executionState.
type DocumentStore struct {
	mu   sync.RWMutex
	data map[string]core.DocumentArray
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{data: make(map[string]core.DocumentArray)}
}

// Get implements core.DocumentStoreReader.
func (s *DocumentStore) Get(pipelineName string) (core.DocumentArray, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.data[key(pipelineName)]
	return docs, ok
}

// Set publishes a pipeline's Process-phase output, overwriting any prior
// value. Only called by Process phase nodes (engine-internal).
func (s *DocumentStore) Set(pipelineName string, docs core.DocumentArray) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(pipelineName)] = docs
}

// Clear empties the store. Called once at the start of every run
// (spec.md §4.5 step 10).
func (s *DocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]core.DocumentArray)
}

// Len reports how many pipelines currently have a published entry.
// Exercised by tests asserting spec.md §8 invariant 4.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func key(name string) string {
	return strings.ToLower(name)
}

var _ core.DocumentStoreReader = (*DocumentStore)(nil)
