package engine

import (
	"context"
	"sync"

	"github.com/creastat/infra/telemetry"
	"github.com/google/uuid"

	"github.com/sitepipe/pipeline/core"
)

// NodeStatus is a phase node's position in the state machine spec.md §3
// and §4.2 define: Pending → Running → {Succeeded | Failed | Skipped |
// Canceled}.
type NodeStatus int

const (
	Pending NodeStatus = iota
	Running
	Succeeded
	Failed
	Skipped
	Canceled
)

func (s NodeStatus) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	case Skipped:
		return "Skipped"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s is one of the four terminal states.
func (s NodeStatus) Terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped || s == Canceled
}

// PhaseNode owns one (pipeline, phase-kind) pair: its module chain,
// its upstream scheduling edges, and a completion signal. It is the Go
// shape of the teacher's graphNode (graph.go), replacing the teacher's
// named-stage/event-filtered edges with the phase-graph's two distinct
// edge roles: the scheduling "upstream" set (who must finish before this
// node may run) and the single "inputSource" (whose output array feeds
// this node's input).
type PhaseNode struct {
	PipelineName string
	Phase        core.PhaseKind
	Isolated     bool

	modules []core.Module

	upstream    []*PhaseNode
	inputSource *PhaseNode

	mu     sync.Mutex
	status NodeStatus
	err    error
	output core.DocumentArray

	done chan struct{}
}

// NewPhaseNode constructs a Pending phase node for one (pipeline, phase)
// pair.
func NewPhaseNode(pipelineName string, phase core.PhaseKind, isolated bool, modules []core.Module) *PhaseNode {
	return &PhaseNode{
		PipelineName: pipelineName,
		Phase:        phase,
		Isolated:     isolated,
		modules:      modules,
		status:       Pending,
		done:         make(chan struct{}),
	}
}

// Done returns a channel closed once this node reaches a terminal state.
func (n *PhaseNode) Done() <-chan struct{} {
	return n.done
}

// Status returns the node's current status.
func (n *PhaseNode) Status() NodeStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Err returns the error recorded on Failed, or nil otherwise.
func (n *PhaseNode) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Output returns the node's produced document array. Only meaningful
// once Status() is Succeeded.
func (n *PhaseNode) Output() core.DocumentArray {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.output
}

// Upstream returns the nodes that must reach a terminal state before this
// node may run.
func (n *PhaseNode) Upstream() []*PhaseNode {
	return n.upstream
}

// addUpstream records an additional scheduling dependency. Used only
// during graph construction.
func (n *PhaseNode) addUpstream(dep *PhaseNode) {
	n.upstream = append(n.upstream, dep)
}

// setInputSource records which node's output feeds this node's input.
// Used only during graph construction.
func (n *PhaseNode) setInputSource(src *PhaseNode) {
	n.inputSource = src
}

func (n *PhaseNode) setTerminal(status NodeStatus, err error, output core.DocumentArray) {
	n.mu.Lock()
	n.status = status
	n.err = err
	n.output = output
	n.mu.Unlock()
	close(n.done)
}

// Run executes the Execution contract of spec.md §4.2. The caller (the
// Phase Scheduler) guarantees Run is invoked only after every upstream
// node has reached a terminal state, and invoked at most once. A
// successful non-isolated Process phase publishes into the shared
// store; isolated pipelines never publish, since nothing may ever
// observe them there.
func (n *PhaseNode) Run(ctx context.Context, store *DocumentStore, executionID uuid.UUID, logger telemetry.Logger) {
	n.mu.Lock()
	n.status = Running
	n.mu.Unlock()

	if logger != nil {
		logger = logger.WithModule(n.PipelineName + "/" + n.Phase.String())
	}

	select {
	case <-ctx.Done():
		n.setTerminal(Canceled, core.NewEngineError(core.ErrCanceled, "canceled before phase start", ""), nil)
		return
	default:
	}

	if allSucceeded := n.upstreamOutcome(); !allSucceeded {
		if logger != nil {
			logger.Error("Skipping "+n.PipelineName+"/"+n.Phase.String()+" due to dependency error",
				telemetry.String("executionId", executionID.String()))
		}
		n.setTerminal(Skipped, core.NewEngineError(core.ErrDependencySkip, "upstream dependency did not succeed", ""), nil)
		return
	}

	input := n.resolveInput()

	execCtx := core.ModuleExecutionContext{
		Store:        store,
		PipelineName: n.PipelineName,
		Phase:        n.Phase,
		ExecutionID:  executionID,
		Logger:       logger,
	}

	output, err := RunModuleChain(ctx, execCtx, n.modules, input)
	if err != nil {
		if core.IsCode(err, core.ErrCanceled) {
			n.setTerminal(Canceled, err, nil)
			return
		}
		n.setTerminal(Failed, err, nil)
		return
	}

	if n.Phase == core.Process && !n.Isolated {
		store.Set(n.PipelineName, output)
	}

	n.setTerminal(Succeeded, nil, output)
}

// upstreamOutcome reports whether every upstream node Succeeded. Failed,
// Skipped, and Canceled upstreams are all treated identically — each
// produces the same downstream Skip, per spec.md §3's phase node
// invariants.
func (n *PhaseNode) upstreamOutcome() bool {
	for _, up := range n.upstream {
		if up.Status() != Succeeded {
			return false
		}
	}
	return true
}

// resolveInput computes this node's input document array per spec.md
// §4.2: Input gets nothing, Process/Transform/Output each get their own
// pipeline's previous-phase output.
func (n *PhaseNode) resolveInput() core.DocumentArray {
	if n.inputSource == nil {
		return core.DocumentArray{}
	}
	return n.inputSource.Output()
}
