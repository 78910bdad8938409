package core

import (
	"io"
	"strings"
)

// ContentProvider streams a document's body. The engine never reads from
// a ContentProvider itself; it exists purely so modules can hand a
// Document around without materializing its content until something
// downstream actually needs it.
type ContentProvider interface {
	// Open returns a fresh reader over the document's content. Callers
	// are responsible for closing it.
	Open() (io.ReadCloser, error)
}

// Document is an opaque, immutable unit of content flowing between
// modules. The engine interprets none of its fields; it only creates
// documents through a DocumentFactory and passes the resulting values by
// reference.
type Document struct {
	SourcePath      string
	DestinationPath string
	Metadata        map[string]any
	Content         ContentProvider
}

// DocumentArray is an ordered, immutable sequence of documents — the unit
// that flows between modules in a module chain. Callers must not mutate
// a DocumentArray after it has been handed to a module; treat it as a
// value even though its underlying representation is a slice.
type DocumentArray []Document

// Clone returns a new DocumentArray backed by a fresh slice, so appending
// to the copy never aliases the original's backing array.
func (d DocumentArray) Clone() DocumentArray {
	if d == nil {
		return nil
	}
	out := make(DocumentArray, len(d))
	copy(out, d)
	return out
}

// DocumentFactory creates documents. It is an external collaborator:
// modules call it, the engine never does.
type DocumentFactory interface {
	CreateDocument(sourcePath, destinationPath string, items map[string]any, content ContentProvider) Document
}

// TypedDocumentFactory is the generic counterpart of DocumentFactory,
// standing in for the original's type-parameterized factory method. T is
// carried only in the Metadata under the "typed" key by the default
// implementation; custom factories are free to do something richer.
type TypedDocumentFactory[T any] interface {
	CreateDocumentFor(sourcePath, destinationPath string, typed T, content ContentProvider) Document
}

// DefaultDocumentFactory is a minimal in-memory DocumentFactory suitable
// for tests and for embedders that don't need a custom one.
type DefaultDocumentFactory struct{}

// NewDefaultDocumentFactory constructs a DefaultDocumentFactory.
func NewDefaultDocumentFactory() *DefaultDocumentFactory {
	return &DefaultDocumentFactory{}
}

// CreateDocument implements DocumentFactory.
func (f *DefaultDocumentFactory) CreateDocument(sourcePath, destinationPath string, items map[string]any, content ContentProvider) Document {
	meta := make(map[string]any, len(items))
	for k, v := range items {
		meta[k] = v
	}
	return Document{
		SourcePath:      sourcePath,
		DestinationPath: destinationPath,
		Metadata:        meta,
		Content:         content,
	}
}

// CreateDocumentFor is the default factory's typed variant: it stashes
// the typed value under the "typed" metadata key. It is a package-level
// function, so *DefaultDocumentFactory itself does not satisfy
// TypedDocumentFactory[T].
func CreateDocumentFor[T any](f *DefaultDocumentFactory, sourcePath, destinationPath string, typed T, content ContentProvider) Document {
	doc := f.CreateDocument(sourcePath, destinationPath, nil, content)
	doc.Metadata["typed"] = typed
	return doc
}

// StringContentProvider is the simplest ContentProvider, streaming a
// fixed in-memory string. Useful for tests and for the default factory.
type StringContentProvider struct {
	Text string
}

// Open implements ContentProvider.
func (p StringContentProvider) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(p.Text)), nil
}
