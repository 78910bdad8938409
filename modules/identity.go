// Package modules holds reference Module implementations used as test
// fixtures: none of them is wired into the engine itself, which only
// ever consumes the core.Module interface.
package modules

import (
	"context"

	"github.com/sitepipe/pipeline/core"
)

// Identity returns its input unchanged. Useful as the minimal module for
// a phase that exists only to move documents from one phase to the
// next, e.g. a single-module Process phase in an isolated pipeline.
type Identity struct{}

// Name implements core.Module.
func (Identity) Name() string { return "identity" }

// Execute implements core.Module.
func (Identity) Execute(_ context.Context, _ core.ModuleExecutionContext, inputs core.DocumentArray) (core.DocumentArray, error) {
	return inputs.Clone(), nil
}
