package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/creastat/infra/telemetry"

	"github.com/sitepipe/pipeline/core"
	"github.com/sitepipe/pipeline/engine"
)

type fnModule struct {
	name string
	fn   func(ctx context.Context, execCtx core.ModuleExecutionContext, inputs core.DocumentArray) (core.DocumentArray, error)
}

func (m *fnModule) Name() string { return m.name }
func (m *fnModule) Execute(ctx context.Context, execCtx core.ModuleExecutionContext, inputs core.DocumentArray) (core.DocumentArray, error) {
	return m.fn(ctx, execCtx, inputs)
}

func testExecCtx() core.ModuleExecutionContext {
	return core.ModuleExecutionContext{
		Logger: telemetry.New(telemetry.Config{Level: "error"}),
	}
}

func TestRunModuleChainThreadsOutputIntoNextInput(t *testing.T) {
	append1 := &fnModule{name: "append1", fn: func(_ context.Context, _ core.ModuleExecutionContext, in core.DocumentArray) (core.DocumentArray, error) {
		return append(in.Clone(), core.Document{SourcePath: "one"}), nil
	}}
	append2 := &fnModule{name: "append2", fn: func(_ context.Context, _ core.ModuleExecutionContext, in core.DocumentArray) (core.DocumentArray, error) {
		return append(in.Clone(), core.Document{SourcePath: "two"}), nil
	}}

	out, err := engine.RunModuleChain(context.Background(), testExecCtx(), []core.Module{append1, append2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].SourcePath != "one" || out[1].SourcePath != "two" {
		t.Fatalf("unexpected chain output: %+v", out)
	}
}

func TestRunModuleChainSkipsNilModules(t *testing.T) {
	input := core.DocumentArray{{SourcePath: "d"}}
	out, err := engine.RunModuleChain(context.Background(), testExecCtx(), []core.Module{nil}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].SourcePath != "d" {
		t.Fatalf("expected input unchanged, got %+v", out)
	}
}

func TestRunModuleChainNilResultBecomesEmptyArray(t *testing.T) {
	nilReturner := &fnModule{name: "nilreturner", fn: func(_ context.Context, _ core.ModuleExecutionContext, _ core.DocumentArray) (core.DocumentArray, error) {
		return nil, nil
	}}

	out, err := engine.RunModuleChain(context.Background(), testExecCtx(), []core.Module{nilReturner}, core.DocumentArray{{SourcePath: "d"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}

func TestRunModuleChainFailureAbortsChain(t *testing.T) {
	boom := &fnModule{name: "boom", fn: func(_ context.Context, _ core.ModuleExecutionContext, _ core.DocumentArray) (core.DocumentArray, error) {
		return nil, errors.New("boom")
	}}
	neverRun := &fnModule{name: "never", fn: func(_ context.Context, _ core.ModuleExecutionContext, in core.DocumentArray) (core.DocumentArray, error) {
		t.Fatal("this module must not run after a prior failure")
		return in, nil
	}}

	_, err := engine.RunModuleChain(context.Background(), testExecCtx(), []core.Module{boom, neverRun}, nil)
	if !core.IsCode(err, core.ErrModuleFailure) {
		t.Fatalf("expected ErrModuleFailure, got %v", err)
	}
}

func TestRunModuleChainPanicBecomesModuleFailure(t *testing.T) {
	panicker := &fnModule{name: "panicker", fn: func(_ context.Context, _ core.ModuleExecutionContext, _ core.DocumentArray) (core.DocumentArray, error) {
		panic("kaboom")
	}}

	_, err := engine.RunModuleChain(context.Background(), testExecCtx(), []core.Module{panicker}, nil)
	if !core.IsCode(err, core.ErrModuleFailure) {
		t.Fatalf("expected a recovered panic to surface as ErrModuleFailure, got %v", err)
	}
}

func TestRunModuleChainObservesCancellationBeforeEachModule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	shouldNotRun := &fnModule{name: "shouldnotrun", fn: func(_ context.Context, _ core.ModuleExecutionContext, in core.DocumentArray) (core.DocumentArray, error) {
		ran = true
		return in, nil
	}}

	_, err := engine.RunModuleChain(ctx, testExecCtx(), []core.Module{shouldNotRun}, nil)
	if !core.IsCode(err, core.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if ran {
		t.Fatal("module must not run once the context is already canceled")
	}
}

func TestRunModuleChainEmptyListReturnsInputUnchanged(t *testing.T) {
	input := core.DocumentArray{{SourcePath: "d"}}
	out, err := engine.RunModuleChain(context.Background(), testExecCtx(), nil, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].SourcePath != "d" {
		t.Fatalf("expected input unchanged, got %+v", out)
	}
}
