package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/creastat/infra/telemetry"

	"github.com/sitepipe/pipeline/core"
)

// RunModuleChain is the Module Chain Executor (spec.md §4.1): it runs an
// ordered list of modules over an input document array, threading each
// module's output into the next module's input, and produces the final
// output array.
//
// Its cancellation-check-then-recover-then-invoke shape is grounded on
// the teacher's runStage (pipeline.go), adapted from a channel-streaming
// single stage to a synchronous array-in/array-out loop over many
// modules.
func RunModuleChain(ctx context.Context, execCtx core.ModuleExecutionContext, modules []core.Module, input core.DocumentArray) (out core.DocumentArray, err error) {
	current := input

	for _, module := range modules {
		if module == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, core.NewEngineError(core.ErrCanceled, "module chain canceled", "")
		default:
		}

		result, execErr := invokeModule(ctx, module, execCtx, current)
		if execErr != nil {
			if isCancellation(ctx, execErr) {
				return nil, core.NewEngineError(core.ErrCanceled, "module chain canceled", "")
			}
			if execCtx.Logger != nil {
				execCtx.Logger.Error("module execution failed",
					telemetry.String("module", module.Name()),
					telemetry.Err(execErr))
			}
			return nil, core.NewEngineError(core.ErrModuleFailure, "module failed", "module %q: %v", module.Name(), execErr)
		}

		if result == nil {
			result = core.DocumentArray{}
		}
		current = result.Clone()
	}

	return current, nil
}

// invokeModule calls module.Execute, converting a panic into an error the
// same way the teacher's runStage recovers stage panics.
func invokeModule(ctx context.Context, module core.Module, execCtx core.ModuleExecutionContext, input core.DocumentArray) (result core.DocumentArray, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %s panicked: %v\n%s", module.Name(), r, debug.Stack())
		}
	}()
	return module.Execute(ctx, execCtx, input)
}

func isCancellation(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	return core.IsCode(err, core.ErrCanceled)
}
