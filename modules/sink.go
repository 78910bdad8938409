package modules

import (
	"context"
	"io"

	"github.com/creastat/infra/telemetry"

	"github.com/sitepipe/pipeline/core"
)

// Saver persists one document's content. A save failure is logged and
// otherwise ignored: the chain is not aborted over it.
type Saver func(ctx context.Context, doc core.Document, content string) error

// Sink passes every document through unchanged, calling Save for each
// one's content as a side effect. Adapted from the teacher's
// HistoryStage (stages/history.go), which intercepted a single event
// type to persist conversation history without interrupting the
// passthrough stream; here every document in the array is offered to
// Save instead of one distinguished event type.
type Sink struct {
	Save   Saver
	Logger telemetry.Logger
}

// Name implements core.Module.
func (s *Sink) Name() string { return "sink" }

// Execute implements core.Module.
func (s *Sink) Execute(ctx context.Context, execCtx core.ModuleExecutionContext, inputs core.DocumentArray) (core.DocumentArray, error) {
	logger := execCtx.Logger
	if logger == nil {
		logger = s.Logger
	}

	for _, doc := range inputs {
		if s.Save == nil || doc.Content == nil {
			continue
		}
		content, err := readAll(doc.Content)
		if err != nil {
			if logger != nil {
				logger.Error("sink failed to read document content", telemetry.Err(err))
			}
			continue
		}
		if err := s.Save(ctx, doc, content); err != nil {
			if logger != nil {
				logger.Error("sink failed to save document", telemetry.Err(err))
			}
		}
	}

	return inputs.Clone(), nil
}

func readAll(provider core.ContentProvider) (string, error) {
	r, err := provider.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
