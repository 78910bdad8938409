package modules

import (
	"context"
	"regexp"
	"strings"

	"github.com/creastat/infra/telemetry"

	"github.com/sitepipe/pipeline/core"
)

var (
	codeBlockRegex      = regexp.MustCompile("(?s)```[^`]*```\n?")
	inlineCodeRegex     = regexp.MustCompile("`[^`]+`")
	markdownBoldRegex   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	markdownItalicRegex = regexp.MustCompile(`\*([^*]+)\*`)
	markdownHeaderRegex = regexp.MustCompile(`(?m)^#+\s+`)
	markdownLinkRegex   = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	htmlTagRegex        = regexp.MustCompile(`<[^>]+>`)
)

// TextSanitizer strips markdown and HTML markup from each document's
// content, replacing it with the cleaned text while leaving source and
// destination paths and metadata untouched.
//
// Adapted from the teacher's TextProcessorStage (stages/text_processor.go),
// which ran the same regex passes over a streaming token buffer destined
// for a TTS engine; this module applies the identical cleaning rules to
// a document's already-complete content instead of an incremental
// sentence buffer, dropping the streaming/sentence-boundary machinery
// that a one-shot document model has no use for.
type TextSanitizer struct {
	StripCodeBlocks bool
	StripMarkdown   bool
	ExpandSymbols   bool
	Logger          telemetry.Logger
}

// Name implements core.Module.
func (t *TextSanitizer) Name() string { return "text_sanitizer" }

// Execute implements core.Module.
func (t *TextSanitizer) Execute(_ context.Context, execCtx core.ModuleExecutionContext, inputs core.DocumentArray) (core.DocumentArray, error) {
	logger := execCtx.Logger
	if logger == nil {
		logger = t.Logger
	}

	out := make(core.DocumentArray, 0, len(inputs))
	for _, doc := range inputs {
		if doc.Content == nil {
			out = append(out, doc)
			continue
		}
		text, err := readAll(doc.Content)
		if err != nil {
			if logger != nil {
				logger.Error("text sanitizer failed to read document content", telemetry.Err(err))
			}
			out = append(out, doc)
			continue
		}

		cleaned := t.clean(text)
		if logger != nil {
			logger.Debug("sanitized document", telemetry.String("sourcePath", doc.SourcePath))
		}

		doc.Content = core.StringContentProvider{Text: cleaned}
		out = append(out, doc)
	}

	return out, nil
}

func (t *TextSanitizer) clean(text string) string {
	result := text

	if t.StripCodeBlocks {
		result = codeBlockRegex.ReplaceAllString(result, "")
		result = inlineCodeRegex.ReplaceAllString(result, "")
	}

	if t.StripMarkdown {
		result = markdownLinkRegex.ReplaceAllString(result, "$1")
		result = markdownBoldRegex.ReplaceAllString(result, "$1")
		result = markdownItalicRegex.ReplaceAllString(result, "$1")
		result = markdownHeaderRegex.ReplaceAllString(result, "")
		result = strings.ReplaceAll(result, "*", "")
	}

	result = htmlTagRegex.ReplaceAllString(result, "")

	if t.ExpandSymbols {
		result = strings.ReplaceAll(result, "&", "and")
		result = strings.ReplaceAll(result, "@", "at")
		result = strings.ReplaceAll(result, "#", "number")
	}

	return strings.TrimSpace(result)
}
