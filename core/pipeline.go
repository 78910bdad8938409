package core

import "strings"

// Pipeline is a named unit carrying four ordered module lists, a set of
// dependency names, and an isolated flag. Pipelines are registered before
// the first execution and are immutable for the duration of a run
// (spec.md §3).
type Pipeline struct {
	Name             string
	InputModules     []Module
	ProcessModules   []Module
	TransformModules []Module
	OutputModules    []Module
	Dependencies     []string
	Isolated         bool
}

// ModulesFor returns the module list for the given phase kind.
func (p Pipeline) ModulesFor(phase PhaseKind) []Module {
	switch phase {
	case Input:
		return p.InputModules
	case Process:
		return p.ProcessModules
	case Transform:
		return p.TransformModules
	case Output:
		return p.OutputModules
	default:
		return nil
	}
}

// PipelineSet is the case-insensitive pipelines registry spec.md §6
// names as an external interface: a mapping from case-insensitive name to
// pipeline definition.
type PipelineSet struct {
	byName map[string]Pipeline
	order  []string
}

// NewPipelineSet creates an empty pipeline registry.
func NewPipelineSet() *PipelineSet {
	return &PipelineSet{byName: make(map[string]Pipeline)}
}

// Register adds a pipeline to the set. Registration order is preserved
// and is the order the Phase Graph Builder visits pipelines in (spec.md
// §4.3 Pass 1). Returns an EngineError if the name collides case-
// insensitively with an already-registered pipeline, or if an isolated
// pipeline declares dependencies.
func (s *PipelineSet) Register(p Pipeline) error {
	key := strings.ToLower(p.Name)
	if _, exists := s.byName[key]; exists {
		return NewEngineError(ErrDuplicatePipeline, "duplicate pipeline name", "pipeline %q already registered", p.Name)
	}
	if p.Isolated && len(p.Dependencies) > 0 {
		return NewEngineError(ErrIsolatedDependency, "isolated pipeline cannot declare dependencies", "pipeline %q is isolated", p.Name)
	}
	s.byName[key] = p
	s.order = append(s.order, key)
	return nil
}

// Get looks up a pipeline by case-insensitive name.
func (s *PipelineSet) Get(name string) (Pipeline, bool) {
	p, ok := s.byName[strings.ToLower(name)]
	return p, ok
}

// Len returns the number of registered pipelines.
func (s *PipelineSet) Len() int {
	return len(s.byName)
}

// Names returns registered pipeline names in registration order.
func (s *PipelineSet) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, key := range s.order {
		names = append(names, s.byName[key].Name)
	}
	return names
}

// All returns every registered pipeline in registration order.
func (s *PipelineSet) All() []Pipeline {
	pipelines := make([]Pipeline, 0, len(s.order))
	for _, key := range s.order {
		pipelines = append(pipelines, s.byName[key])
	}
	return pipelines
}
