package engine

import (
	"github.com/creastat/infra/telemetry"

	"github.com/sitepipe/pipeline/core"
)

// phaseGroup is the Pipeline Phases group spec.md §3 names: the four
// nodes of one pipeline plus its isolated flag, used only during graph
// construction. It is the phase-graph analog of the teacher's graphNode
// (graph.go), scoped to one pipeline instead of one arbitrary stage.
type phaseGroup struct {
	isolated                          bool
	input, process, transform, output *PhaseNode
}

// BuildPhaseGraph runs the two-pass algorithm spec.md §4.3 specifies:
// a topological Visit over registered pipelines building one phaseGroup
// per pipeline (Pass 1), followed by extending every non-isolated
// pipeline's Transform upstream set with every other non-isolated
// pipeline's Process node (Pass 2, the Transform barrier).
//
// The returned slice is ordered as spec.md §4.3 "Output order" mandates:
// the concatenation, in group-visit order, of all Inputs, then all
// Processes, then all Transforms, then all Outputs.
func BuildPhaseGraph(pipelines *core.PipelineSet, logger telemetry.Logger) ([]*PhaseNode, error) {
	b := &graphBuilder{
		pipelines: pipelines,
		visited:   make(map[string]bool),
		groups:    make(map[string]*phaseGroup),
	}

	for _, name := range pipelines.Names() {
		if _, err := b.visit(name); err != nil {
			return nil, err
		}
	}

	for _, g := range b.order {
		if g.isolated {
			continue
		}
		for _, other := range b.order {
			if other.isolated || other == g {
				continue
			}
			g.transform.addUpstream(other.process)
		}
	}

	return assembleOrder(b.order), nil
}

type graphBuilder struct {
	pipelines *core.PipelineSet
	visited   map[string]bool
	groups    map[string]*phaseGroup
	order     []*phaseGroup
}

// visit implements spec.md §4.3 Pass 1's Visit(name), using the
// visited-set/group-presence distinction to tell an in-progress visit
// (a cycle) apart from a finished one, the same white/gray/black
// coloring idiom the teacher's hasCycle (validation.go) used for its own
// DFS, now folded directly into construction instead of a separate
// post-hoc pass.
func (b *graphBuilder) visit(name string) (*phaseGroup, error) {
	// Key the visit by the registered spelling, so a dependency named in
	// a different case reaches the same group.
	if p, ok := b.pipelines.Get(name); ok {
		name = p.Name
	}
	if !b.visited[name] {
		b.visited[name] = true

		pipeline, ok := b.pipelines.Get(name)
		if !ok {
			return nil, core.NewEngineError(core.ErrUnknownDependency, "unknown pipeline", "pipeline %q is not registered", name)
		}

		if pipeline.Isolated {
			return b.finishIsolated(pipeline), nil
		}

		var depProcessNodes []*PhaseNode
		for _, dep := range pipeline.Dependencies {
			depPipeline, ok := b.pipelines.Get(dep)
			if !ok {
				return nil, core.NewEngineError(core.ErrUnknownDependency, "unknown dependency", "pipeline %q depends on unregistered pipeline %q", pipeline.Name, dep)
			}
			if depPipeline.Isolated {
				return nil, core.NewEngineError(core.ErrIsolatedDependency, "dependency on isolated pipeline", "Pipeline %s has dependency on isolated pipeline %s", pipeline.Name, depPipeline.Name)
			}
			depGroup, err := b.visit(dep)
			if err != nil {
				return nil, err
			}
			depProcessNodes = append(depProcessNodes, depGroup.process)
		}

		return b.finishNonIsolated(pipeline, depProcessNodes), nil
	}

	if g, recorded := b.groups[name]; recorded {
		return g, nil
	}

	return nil, core.NewEngineError(core.ErrCycleDetected, "dependency cycle", "Pipeline cyclical dependency detected involving %s", name)
}

func (b *graphBuilder) finishIsolated(p core.Pipeline) *phaseGroup {
	input := NewPhaseNode(p.Name, core.Input, true, p.InputModules)
	process := NewPhaseNode(p.Name, core.Process, true, p.ProcessModules)
	transform := NewPhaseNode(p.Name, core.Transform, true, p.TransformModules)
	output := NewPhaseNode(p.Name, core.Output, true, p.OutputModules)

	process.addUpstream(input)
	process.setInputSource(input)
	transform.addUpstream(process)
	transform.setInputSource(process)
	output.addUpstream(transform)
	output.setInputSource(transform)

	g := &phaseGroup{isolated: true, input: input, process: process, transform: transform, output: output}
	b.groups[p.Name] = g
	b.order = append(b.order, g)
	return g
}

func (b *graphBuilder) finishNonIsolated(p core.Pipeline, depProcessNodes []*PhaseNode) *phaseGroup {
	input := NewPhaseNode(p.Name, core.Input, false, p.InputModules)
	process := NewPhaseNode(p.Name, core.Process, false, p.ProcessModules)
	transform := NewPhaseNode(p.Name, core.Transform, false, p.TransformModules)
	output := NewPhaseNode(p.Name, core.Output, false, p.OutputModules)

	process.addUpstream(input)
	process.setInputSource(input)
	for _, depProcess := range depProcessNodes {
		process.addUpstream(depProcess)
	}

	transform.addUpstream(process) // Pass 2 extends this set further
	transform.setInputSource(process)
	output.addUpstream(transform)
	output.setInputSource(transform)

	g := &phaseGroup{isolated: false, input: input, process: process, transform: transform, output: output}
	b.groups[p.Name] = g
	b.order = append(b.order, g)
	return g
}

func assembleOrder(groups []*phaseGroup) []*PhaseNode {
	nodes := make([]*PhaseNode, 0, len(groups)*4)
	for _, g := range groups {
		nodes = append(nodes, g.input)
	}
	for _, g := range groups {
		nodes = append(nodes, g.process)
	}
	for _, g := range groups {
		nodes = append(nodes, g.transform)
	}
	for _, g := range groups {
		nodes = append(nodes, g.output)
	}
	return nodes
}
