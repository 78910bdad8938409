// Package fsys supplies the default core.FileSystem implementation. It is
// backed by afero, the filesystem abstraction pulled into the retrieval
// pack via viper, and uses doublestar glob matching to keep a configurable
// set of paths (e.g. version-control directories) out of recursive
// deletes even when the whole output or temp directory is otherwise being
// cleaned.
package fsys

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/sitepipe/pipeline/core"
)

// FileSystem is the default core.FileSystem, rooted at an afero.Fs.
type FileSystem struct {
	fs             afero.Fs
	outputPath     string
	tempPath       string
	inputPaths     []string
	protectedGlobs []string
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithProtectedGlobs sets doublestar glob patterns (matched relative to
// the directory being deleted) that Delete will never remove.
func WithProtectedGlobs(globs ...string) Option {
	return func(f *FileSystem) { f.protectedGlobs = globs }
}

// New constructs a FileSystem rooted at the OS filesystem.
func New(outputPath, tempPath string, inputPaths []string, opts ...Option) *FileSystem {
	return newWithFs(afero.NewOsFs(), outputPath, tempPath, inputPaths, opts...)
}

// NewInMemory constructs a FileSystem backed entirely by an in-memory
// afero filesystem, useful for tests that exercise clean-path behavior
// without touching disk.
func NewInMemory(outputPath, tempPath string, inputPaths []string, opts ...Option) *FileSystem {
	return newWithFs(afero.NewMemMapFs(), outputPath, tempPath, inputPaths, opts...)
}

func newWithFs(fs afero.Fs, outputPath, tempPath string, inputPaths []string, opts ...Option) *FileSystem {
	f := &FileSystem{fs: fs, outputPath: outputPath, tempPath: tempPath, inputPaths: inputPaths}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OutputPath implements core.FileSystem.
func (f *FileSystem) OutputPath() string { return f.outputPath }

// TempPath implements core.FileSystem.
func (f *FileSystem) TempPath() string { return f.tempPath }

// InputPaths implements core.FileSystem.
func (f *FileSystem) InputPaths() []string { return f.inputPaths }

// GetOutputDirectory implements core.FileSystem.
func (f *FileSystem) GetOutputDirectory() core.Directory {
	return &directory{fs: f.fs, path: f.outputPath, protectedGlobs: f.protectedGlobs}
}

// GetTempDirectory implements core.FileSystem.
func (f *FileSystem) GetTempDirectory() core.Directory {
	return &directory{fs: f.fs, path: f.tempPath, protectedGlobs: f.protectedGlobs}
}

type directory struct {
	fs             afero.Fs
	path           string
	protectedGlobs []string
}

// Path implements core.Directory.
func (d *directory) Path() string { return d.path }

// Exists implements core.Directory.
func (d *directory) Exists() bool {
	info, err := d.fs.Stat(d.path)
	return err == nil && info.IsDir()
}

// Delete implements core.Directory. When no protected globs are
// configured it is a plain RemoveAll; otherwise it walks the tree and
// removes only entries that don't match a protected glob, matching the
// glob against the path relative to the directory root.
func (d *directory) Delete(recursive bool) error {
	if !d.Exists() {
		return nil
	}
	if len(d.protectedGlobs) == 0 {
		if recursive {
			return d.fs.RemoveAll(d.path)
		}
		return d.fs.Remove(d.path)
	}
	return afero.Walk(d.fs, d.path, func(p string, info os.FileInfo, err error) error {
		if err != nil || p == d.path {
			return err
		}
		rel, relErr := filepath.Rel(d.path, p)
		if relErr != nil {
			return relErr
		}
		if d.isProtected(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := d.fs.RemoveAll(p); err != nil {
				return err
			}
			return filepath.SkipDir
		}
		return d.fs.Remove(p)
	})
}

func (d *directory) isProtected(relPath string) bool {
	for _, glob := range d.protectedGlobs {
		if ok, _ := doublestar.Match(glob, filepath.ToSlash(relPath)); ok {
			return true
		}
	}
	return false
}

var _ core.FileSystem = (*FileSystem)(nil)
var _ core.Directory = (*directory)(nil)
