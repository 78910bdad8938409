package core

import (
	"context"

	"github.com/creastat/infra/telemetry"
	"github.com/google/uuid"
)

// DocumentStoreReader is the read-only view of the shared document store
// that modules are handed. Transform- and Output-phase modules use Get to
// consult another pipeline's most recent Process output; the engine keeps
// the Set side private to its own Process-phase completion path so
// Transform modules cannot publish (spec.md §9 open question 1).
type DocumentStoreReader interface {
	Get(pipelineName string) (DocumentArray, bool)
}

// ModuleExecutionContext bundles the shared store, the current
// pipeline/phase identity, the execution ID, and a logger. The
// cancellation handle and the input documents are not part of it: they
// reach the module as Execute's ctx and inputs arguments.
type ModuleExecutionContext struct {
	Store        DocumentStoreReader
	PipelineName string
	Phase        PhaseKind
	ExecutionID  uuid.UUID
	Logger       telemetry.Logger
}

// Module is the opaque, single-operation transformer unit spec.md §1 and
// §6 describe: "opaque units with a single asynchronous execute method".
// Go's blocking-call-on-its-own-goroutine model stands in for the
// original's async method; callers invoke Execute on whatever goroutine
// is already running the module chain.
type Module interface {
	// Name identifies the module for error messages and logging.
	Name() string

	// Execute transforms inputs into an output DocumentArray. A nil
	// result is treated as an empty array by the chain executor, not as
	// an error.
	Execute(ctx context.Context, execCtx ModuleExecutionContext, inputs DocumentArray) (DocumentArray, error)
}
