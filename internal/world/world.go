package world

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/typstead/internal/fonts"
	"github.com/dshills/typstead/internal/pkgcache"
	"github.com/dshills/typstead/internal/source"
)

// evictMaxAge is how many compile generations a compiler-internal memoized
// value may survive before the post-compile sweep discards it.
const evictMaxAge = 10

// World is one compilation world: a root directory, an entrypoint, and the
// caches the compiler reads through. All operations are serialized per
// world; see the package documentation for the concurrency model.
type World struct {
	mu sync.Mutex

	id   string // instance id for log correlation
	root string
	main string

	library   *Library
	catalog   *fonts.Catalog
	packages  *pkgcache.Cache
	store     *source.Store
	compiler  Compiler
	completer Completer

	lastDoc *Document

	logger *slog.Logger
}

type worldConfig struct {
	mainText  string
	hasText   bool
	catalog   *fonts.Catalog
	packages  *pkgcache.Cache
	compiler  Compiler
	completer Completer
	logger    *slog.Logger
	readFile  source.ReadFileFunc
}

// WorldOption configures world construction.
type WorldOption func(*worldConfig)

// WithMainText preloads the entrypoint text instead of reading it from
// disk, for the open-before-save case.
func WithMainText(text string) WorldOption {
	return func(c *worldConfig) {
		c.mainText = text
		c.hasText = true
	}
}

// WithCatalog sets the font catalog, typically shared across worlds.
func WithCatalog(catalog *fonts.Catalog) WorldOption {
	return func(c *worldConfig) { c.catalog = catalog }
}

// WithPackages sets the package cache, typically shared across worlds.
func WithPackages(cache *pkgcache.Cache) WorldOption {
	return func(c *worldConfig) { c.packages = cache }
}

// WithCompiler sets the external compiler.
func WithCompiler(compiler Compiler) WorldOption {
	return func(c *worldConfig) { c.compiler = compiler }
}

// WithCompleter sets the external completion engine.
func WithCompleter(completer Completer) WorldOption {
	return func(c *worldConfig) { c.completer = completer }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WorldOption {
	return func(c *worldConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReadFile overrides disk reads in the world's source store.
func WithReadFile(fn source.ReadFileFunc) WorldOption {
	return func(c *worldConfig) { c.readFile = fn }
}

// New constructs a world rooted at root with entrypoint main. The
// entrypoint must resolve to a descendant of (or equal) the root and must
// be readable, either from the WithMainText preload or from disk; otherwise
// construction fails with ErrConstruction and no world is produced.
func New(root, main string, opts ...WorldOption) (*World, error) {
	cfg := worldConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("root %s: %v: %w", root, err, ErrConstruction)
	}
	absMain, err := filepath.Abs(main)
	if err != nil {
		return nil, fmt.Errorf("entrypoint %s: %v: %w", main, err, ErrConstruction)
	}

	rel, err := filepath.Rel(absRoot, absMain)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("entrypoint %s outside root %s: %w", absMain, absRoot, ErrConstruction)
	}

	text := cfg.mainText
	if !cfg.hasText {
		data, err := os.ReadFile(absMain)
		if err != nil {
			return nil, fmt.Errorf("entrypoint %s: %v: %w", absMain, err, ErrConstruction)
		}
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("entrypoint %s: %v: %w", absMain, source.ErrInvalidEncoding, ErrConstruction)
		}
		text = string(data)
	}

	storeOpts := []source.StoreOption{source.WithLogger(cfg.logger)}
	if cfg.readFile != nil {
		storeOpts = append(storeOpts, source.WithReadFile(cfg.readFile))
	}

	w := &World{
		id:        uuid.New().String(),
		root:      absRoot,
		main:      absMain,
		library:   NewLibrary(),
		catalog:   cfg.catalog,
		packages:  cfg.packages,
		store:     source.NewStore(storeOpts...),
		compiler:  cfg.compiler,
		completer: cfg.completer,
		logger:    cfg.logger,
	}
	w.store.Put(w.localID(absMain), absMain, text)

	w.logger.Debug("world created", "world", w.id, "root", absRoot, "entrypoint", absMain)
	return w, nil
}

// Root returns the world's root directory.
func (w *World) Root() string { return w.root }

// MainPath returns the entrypoint path.
func (w *World) MainPath() string { return w.main }

// ID returns the instance id used in logs.
func (w *World) ID() string { return w.id }

// localID derives the root-relative file identifier for an absolute path.
// Paths outside the root fall back to their base name.
func (w *World) localID(path string) source.FileID {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return source.FileID{Path: filepath.ToSlash(rel)}
}

// AddFile inserts or wholesale-replaces the cached text for path.
func (w *World) AddFile(path, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.store.Put(w.localID(abs), abs, text)
	w.logger.Debug("file added", "world", w.id, "path", abs)
}

// UpdateFile applies an incremental range edit to the cached text for path
// and returns the byte span the replacement occupies. Edits are applied in
// delivery order; coordinate failures leave the cached text untouched.
func (w *World) UpdateFile(path string, rng source.Range, text string) (source.ByteRange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	br, err := w.store.Edit(abs, rng, text)
	if err != nil {
		w.logger.Warn("edit rejected", "world", w.id, "path", abs, "error", err)
		return source.ByteRange{}, err
	}
	return br, nil
}

// Compile drives the external compiler against this world. On success the
// world's cached last-document is replaced; either way a bounded eviction
// sweep runs afterward to discard compiler-internal memoized values older
// than a fixed number of generations.
func (w *World) Compile() (*Document, []Diagnostic) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.compiler == nil {
		return nil, []Diagnostic{{Severity: SeverityError, Message: ErrNoCompiler.Error()}}
	}

	defer w.compiler.Evict(evictMaxAge)

	doc, diags := w.compiler.Compile(w)
	if doc != nil {
		w.logger.Info("compiled successfully", "world", w.id, "entrypoint", w.main, "pages", doc.Pages)
		w.lastDoc = doc
		return doc, diags
	}

	if len(diags) > 0 {
		w.logger.Warn("failed to compile", "world", w.id, "entrypoint", w.main, "message", diags[0].Message)
	}
	return nil, diags
}

// Complete returns completion candidates at pos in the cached source for
// path, in the engine's order. An unknown path or out-of-bounds cursor
// yields an empty result, not an error.
func (w *World) Complete(path string, pos source.Position) []CompletionItem {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completer == nil {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	src, ok := w.store.Get(abs)
	if !ok {
		return nil
	}
	offset, err := src.ByteOffset(pos)
	if err != nil {
		return nil
	}

	return w.completer.Complete(w, w.lastDoc, src, offset)
}

// LastDocument returns the most recent successfully compiled document, or
// nil if no compile has succeeded.
func (w *World) LastDocument() *Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastDoc
}

// Store exposes the world's source store for introspection.
func (w *World) Store() *source.Store { return w.store }

// View implementation. These methods are called by the compiler from within
// Compile, which already holds the world lock; they rely on the component
// caches' own synchronization and must not retake w.mu.

// Library returns the world's standard-library singleton.
func (w *World) Library() *Library { return w.library }

// Book returns the ordered font metadata index.
func (w *World) Book() fonts.Book {
	if w.catalog == nil {
		return nil
	}
	return w.catalog.Book()
}

// Font returns the materialized face at index.
func (w *World) Font(index int) (*fonts.Font, bool) {
	if w.catalog == nil {
		return nil, false
	}
	return w.catalog.Font(index)
}

// Main returns the entrypoint source.
func (w *World) Main() (*source.Source, error) {
	return w.store.GetOrLoad(w.localID(w.main), w.main)
}

// Source returns the text file addressed by id. Package identifiers route
// through the package cache; local identifiers resolve under the root.
// Either way the read memoizes in the source store, so repeat lookups
// during the same compile are served from memory.
func (w *World) Source(id source.FileID) (*source.Source, error) {
	path, err := w.resolvePath(id)
	if err != nil {
		return nil, err
	}
	return w.store.GetOrLoad(id, path)
}

// File returns the raw bytes of the file addressed by id. Binary files are
// not cached as sources; each lookup reads from disk.
func (w *World) File(id source.FileID) ([]byte, error) {
	path, err := w.resolvePath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, source.ErrNotFound)
	}
	return data, nil
}

// Today returns a fixed epoch date so compilation has no wall-clock
// dependency.
func (w *World) Today() time.Time {
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// resolvePath maps a file identifier to an absolute filesystem path.
func (w *World) resolvePath(id source.FileID) (string, error) {
	if !id.IsPackage() {
		return filepath.Join(w.root, filepath.FromSlash(id.Path)), nil
	}

	if w.packages == nil {
		return "", fmt.Errorf("package %s: no package cache configured: %w", id.Pkg, source.ErrNotFound)
	}
	ref, err := pkgcache.ParseSpec(id.Pkg)
	if err != nil {
		return "", fmt.Errorf("package %s: %w", id.Pkg, err)
	}
	dir, err := w.packages.Resolve(ref)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(id.Path)), nil
}
