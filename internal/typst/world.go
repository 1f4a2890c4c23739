package typst

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fakturo/fakturo/internal/config"
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/fakturo/fakturo/internal/logger"
)

// FileID identifies a file the compiler may request: either a file inside a
// versioned package, or a file relative to the template directory.
type FileID struct {
	Package *PackageSpec
	Path    string
}

func (id FileID) String() string {
	if id.Package != nil {
		return fmt.Sprintf("%s/%s", id.Package, id.Path)
	}
	return id.Path
}

// MainFile identifies the in-memory main source.
var MainFile = FileID{Path: "main.typ"}

// World supplies everything the compiler may request while compiling one
// document: the main source, auxiliary and package files, fonts, and the
// current date. A World is built fresh per document and discarded after one
// compile; the only state shared between concurrent Worlds is the on-disk
// package cache.
type World struct {
	source      string
	templateDir string
	packages    *PackageCache
	fonts       []Font
	today       time.Time
	logger      *logger.Logger
}

type WorldOption func(w *World)

// WithPackageCache overrides the package cache the world resolves against.
func WithPackageCache(c *PackageCache) WorldOption {
	return func(w *World) {
		w.packages = c
	}
}

// NewWorld builds a world over an already-filled main source. Fonts are
// enumerated here, once per document generation, so system font changes
// apply to the next run.
func NewWorld(cfg *config.Configuration, log *logger.Logger, source string, opts ...WorldOption) (*World, error) {
	today, err := cfg.Pdf.CreationTime()
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("invalid document creation date").
			WithHint("pdf.creation_date must be a YYYY-MM-DD date").
			Mark(ierr.ErrValidation)
	}

	w := &World{
		source:      source,
		templateDir: cfg.Pdf.TemplateDir,
		packages:    NewPackageCache(cfg.Pdf.PackageCacheDir, log),
		fonts:       ScanSystemFonts(cfg.Pdf.FontDirs...),
		today:       today,
		logger:      log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// MainSource returns the main source text. It never touches disk: the
// source is supplied in-memory by the template filler.
func (w *World) MainSource() string {
	return w.source
}

// Source resolves a file id to source text.
func (w *World) Source(id FileID) (string, error) {
	if id == MainFile {
		return w.source, nil
	}
	data, err := w.File(id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// File resolves a file id to raw bytes. Package-tagged ids resolve through
// the package cache, materializing the package on first use; everything
// else resolves relative to the template directory.
func (w *World) File(id FileID) ([]byte, error) {
	if id == MainFile {
		return []byte(w.source), nil
	}
	if id.Package != nil {
		dir, err := w.packages.Ensure(*id.Package)
		if err != nil {
			return nil, err
		}
		return readFile(filepath.Join(dir, id.Path), id)
	}
	return readFile(filepath.Join(w.templateDir, id.Path), id)
}

func readFile(path string, id FileID) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessagef("file %s not found", id).
			WithHintf("Expected file at %s", path).
			Mark(ierr.ErrNotFound)
	}
	return data, nil
}

// Font returns the font at the given enumeration index. A missing index is
// not fatal: the compiler degrades to missing-glyph rendering.
func (w *World) Font(index int) (Font, bool) {
	if index < 0 || index >= len(w.fonts) {
		return Font{}, false
	}
	return w.fonts[index], true
}

// Fonts returns the enumerated font table.
func (w *World) Fonts() []Font {
	return w.fonts
}

// Today returns the fixed document date. Identical inputs must compile to
// byte-identical output, so this is never the wall clock; the true
// generation time is recorded on the bill record instead.
func (w *World) Today() time.Time {
	return w.today
}

// TemplateDir returns the local auxiliary file root.
func (w *World) TemplateDir() string {
	return w.templateDir
}

// PackageCacheDir returns the package cache root.
func (w *World) PackageCacheDir() string {
	return w.packages.Root()
}

// EnsurePackages materializes every package the main source imports, so the
// compile step finds them in the cache. Idempotent.
func (w *World) EnsurePackages() error {
	for _, spec := range ImportedPackages(w.source) {
		if _, err := w.packages.Ensure(spec); err != nil {
			return err
		}
	}
	return nil
}
