// Package engine implements the execution engine spec.md §1 describes:
// the Module Chain Executor, Phase Node, Phase Graph Builder, Phase
// Scheduler, Engine Orchestrator, and Shared Document Store.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/creastat/infra/telemetry"
	"github.com/google/uuid"

	"github.com/sitepipe/pipeline/core"
)

// ExecutionResult reports the outcome of one Execute call: the minted
// execution identifier, the wall-clock duration, and the phase nodes as
// they stood at the end of the run, so embedders can inspect individual
// node statuses per spec.md §7's propagation policy instead of relying
// on a single aggregate error.
type ExecutionResult struct {
	ExecutionID uuid.UUID
	Duration    time.Duration
	Nodes       []*PhaseNode
}

// Engine is the Engine Orchestrator (spec.md §4.5). It owns the
// pipeline registry, the shared document store, and the phase graph
// (built once and reused across runs), and drives one run per Execute
// call.
//
// Grounded on the teacher's Pipeline (pipeline.go), which likewise held
// a built-once graph and a document/execution-state map rebuilt every
// run; this type generalizes that shape from one pipeline's stages to
// the whole multi-pipeline phase graph.
type Engine struct {
	pipelines       *core.PipelineSet
	settings        core.Settings
	fileSystem      core.FileSystem
	documentFactory core.DocumentFactory
	locator         core.ServiceLocator
	logger          telemetry.Logger

	store *DocumentStore

	buildMu sync.Mutex
	nodes   []*PhaseNode

	disposeOnce sync.Once
	disposed    bool
	disposedMu  sync.RWMutex
}

// New constructs an Engine. locator may be nil, in which case a
// core.DefaultServiceLocator is constructed, matching spec.md §6:
// "Engine construction with an optional service locator. When absent,
// the engine constructs a default one providing a logger."
func New(pipelines *core.PipelineSet, settings core.Settings, fileSystem core.FileSystem, documentFactory core.DocumentFactory, locator core.ServiceLocator) *Engine {
	if locator == nil {
		locator = core.NewDefaultServiceLocator()
	}
	return &Engine{
		pipelines:       pipelines,
		settings:        settings,
		fileSystem:      fileSystem,
		documentFactory: documentFactory,
		locator:         locator,
		logger:          locator.Logger().WithModule("engine"),
		store:           NewDocumentStore(),
	}
}

// Store exposes the shared document store to embedders wiring module
// execution contexts outside of a run (e.g. tests).
func (e *Engine) Store() *DocumentStore {
	return e.store
}

// DocumentFactory exposes the configured document factory to modules,
// which construct documents directly rather than through the scheduler.
func (e *Engine) DocumentFactory() core.DocumentFactory {
	return e.documentFactory
}

// Execute runs the engine once, per the thirteen-step contract of
// spec.md §4.5. It never returns a non-nil error for phase-level or
// module-level failures — those are reported through the returned
// ExecutionResult's node statuses — only for conditions that abort the
// entire run before any phase executes (Disposed, graph-build errors).
func (e *Engine) Execute(ctx context.Context) (*ExecutionResult, error) {
	if e.isDisposed() {
		return nil, core.NewEngineError(core.ErrDisposed, "engine is disposed", "")
	}

	if e.pipelines == nil || e.pipelines.Len() == 0 {
		e.logger.Warn("no pipelines registered, nothing to execute")
		return &ExecutionResult{ExecutionID: uuid.New()}, nil
	}

	e.warnOnPathCollision()

	if e.fileSystem != nil {
		if err := e.fileSystem.GetTempDirectory().Delete(true); err != nil {
			e.logger.Warn("failed to clean temp path", telemetry.Err(err))
		}
		if e.settings != nil && e.settings.GetBool(core.SettingCleanOutputPath) {
			if err := e.fileSystem.GetOutputDirectory().Delete(true); err != nil {
				e.logger.Warn("failed to clean output path", telemetry.Err(err))
			}
		}
	}

	nodes, err := e.buildGraph()
	if err != nil {
		return nil, err
	}

	executionID := uuid.New()
	start := time.Now()

	e.logger.Info("executing pipelines",
		telemetry.Int("pipelineCount", e.pipelines.Len()),
		telemetry.String("executionId", executionID.String()))

	e.store.Clear()

	if err := RunPhaseGraph(ctx, nodes, e.store, executionID, e.logger); err != nil {
		if !isCancellation(ctx, err) {
			e.logger.Error("unhandled exception escaped the scheduler", telemetry.Err(err))
		}
	}

	duration := time.Since(start)
	e.logger.Info("finished execution",
		telemetry.String("executionId", executionID.String()),
		telemetry.Int("durationMs", int(duration.Milliseconds())))

	return &ExecutionResult{ExecutionID: executionID, Duration: duration, Nodes: nodes}, nil
}

// buildGraph builds the phase array on first use and caches it, per
// spec.md §3's "the graph is built once" lifecycle note.
func (e *Engine) buildGraph() ([]*PhaseNode, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if e.nodes != nil {
		return e.nodes, nil
	}

	nodes, err := BuildPhaseGraph(e.pipelines, e.logger)
	if err != nil {
		return nil, err
	}
	e.nodes = nodes
	return nodes, nil
}

// warnOnPathCollision implements spec.md §4.5 step 4: a plain string
// equality check between each configured input path and the output
// path, left unnormalized per the open question recorded in SPEC_FULL.md.
func (e *Engine) warnOnPathCollision() {
	if e.fileSystem == nil {
		return
	}
	output := e.fileSystem.OutputPath()
	for _, input := range e.fileSystem.InputPaths() {
		if input == output {
			e.logger.Warn("input path equals output path", telemetry.String("path", output))
		}
	}
}

func (e *Engine) isDisposed() bool {
	e.disposedMu.RLock()
	defer e.disposedMu.RUnlock()
	return e.disposed
}

// Dispose idempotently tears the engine down: disposes every phase
// node's modules, cleans the temporary path, and marks the engine
// disposed so further Execute calls fail with Disposed. Safe to call
// more than once; only the first call has any effect.
//
// core.Pipeline is a plain value struct (core/pipeline.go) with no
// lifecycle of its own, so pipeline-level disposal isn't part of this
// port; every module a pipeline can carry is still probed for
// core.Disposer through its phase nodes above.
func (e *Engine) Dispose() error {
	e.disposeOnce.Do(func() {
		for _, node := range e.nodes {
			for _, module := range node.modules {
				if d, ok := module.(core.Disposer); ok {
					if err := d.Dispose(); err != nil {
						e.logger.Warn("module dispose failed", telemetry.Err(err))
					}
				}
			}
		}

		if e.fileSystem != nil {
			if err := e.fileSystem.GetTempDirectory().Delete(true); err != nil {
				e.logger.Warn("failed to clean temp path on dispose", telemetry.Err(err))
			}
		}

		e.disposedMu.Lock()
		e.disposed = true
		e.disposedMu.Unlock()
	})
	return nil
}
