package modules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sitepipe/pipeline/core"
	"github.com/sitepipe/pipeline/modules"
)

func TestIdentityReturnsInputUnchanged(t *testing.T) {
	in := core.DocumentArray{{SourcePath: "a"}, {SourcePath: "b"}}
	out, err := (modules.Identity{}).Execute(context.Background(), core.ModuleExecutionContext{}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].SourcePath != "a" || out[1].SourcePath != "b" {
		t.Fatalf("expected input unchanged, got %+v", out)
	}
}

func TestSinkCallsSaveForEachDocumentAndPassesThrough(t *testing.T) {
	var saved []string
	sink := &modules.Sink{
		Save: func(_ context.Context, doc core.Document, content string) error {
			saved = append(saved, content)
			return nil
		},
	}

	in := core.DocumentArray{
		{SourcePath: "a", Content: core.StringContentProvider{Text: "hello"}},
		{SourcePath: "b", Content: core.StringContentProvider{Text: "world"}},
	}

	out, err := sink.Execute(context.Background(), core.ModuleExecutionContext{}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected passthrough of 2 documents, got %d", len(out))
	}
	if len(saved) != 2 || saved[0] != "hello" || saved[1] != "world" {
		t.Fatalf("expected Save called with each document's content, got %+v", saved)
	}
}

func TestSinkSaveFailureDoesNotAbortChain(t *testing.T) {
	sink := &modules.Sink{
		Save: func(_ context.Context, _ core.Document, _ string) error {
			return errors.New("save failed")
		},
	}
	in := core.DocumentArray{{SourcePath: "a", Content: core.StringContentProvider{Text: "x"}}}

	out, err := sink.Execute(context.Background(), core.ModuleExecutionContext{}, in)
	if err != nil {
		t.Fatalf("a save failure must not surface as a module error, got %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected passthrough despite save failure, got %+v", out)
	}
}

func TestTextSanitizerStripsMarkdownAndHTML(t *testing.T) {
	sanitizer := &modules.TextSanitizer{StripMarkdown: true}
	in := core.DocumentArray{{
		SourcePath: "a",
		Content:    core.StringContentProvider{Text: "**bold** <b>html</b> [link](http://x)"},
	}}

	out, err := sanitizer.Execute(context.Background(), core.ModuleExecutionContext{}, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := out[0].Content.Open()
	if err != nil {
		t.Fatalf("failed to open sanitized content: %v", err)
	}
	defer content.Close()

	var buf [256]byte
	n, _ := content.Read(buf[:])
	got := string(buf[:n])
	want := "bold html link"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestTextSanitizerExpandsSymbols(t *testing.T) {
	sanitizer := &modules.TextSanitizer{ExpandSymbols: true}
	in := core.DocumentArray{{Content: core.StringContentProvider{Text: "rock & roll"}}}

	out, _ := sanitizer.Execute(context.Background(), core.ModuleExecutionContext{}, in)
	content, _ := out[0].Content.Open()
	defer content.Close()
	var buf [256]byte
	n, _ := content.Read(buf[:])
	got := string(buf[:n])
	if got != "rock and roll" {
		t.Errorf("want %q, got %q", "rock and roll", got)
	}
}
