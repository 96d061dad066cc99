package world

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/typstead/internal/pkgcache"
	"github.com/dshills/typstead/internal/source"
)

// fakeCompiler records drive-throughs of the view and returns a canned
// result.
type fakeCompiler struct {
	compiles int
	evicts   []int
	run      func(v View) (*Document, []Diagnostic)
}

func (c *fakeCompiler) Compile(v View) (*Document, []Diagnostic) {
	c.compiles++
	if c.run != nil {
		return c.run(v)
	}
	return &Document{Pages: 1}, nil
}

func (c *fakeCompiler) Evict(maxAge int) {
	c.evicts = append(c.evicts, maxAge)
}

// fakeCompleter captures its inputs and returns canned candidates.
type fakeCompleter struct {
	doc    *Document
	offset int
	items  []CompletionItem
}

func (c *fakeCompleter) Complete(v View, doc *Document, src *source.Source, offset int) []CompletionItem {
	c.doc = doc
	c.offset = offset
	return c.items
}

func writeMain(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "main.typ")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewReadsEntrypoint(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "= Hello\n")

	w, err := New(dir, main)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	src, err := w.Main()
	if err != nil {
		t.Fatalf("Main failed: %v", err)
	}
	if src.Text() != "= Hello\n" {
		t.Errorf("unexpected entrypoint text %q", src.Text())
	}
}

func TestNewRejectsEntrypointOutsideRoot(t *testing.T) {
	rootDir := t.TempDir()
	otherDir := t.TempDir()
	main := writeMain(t, otherDir, "= Elsewhere\n")

	_, err := New(rootDir, main)
	if !errors.Is(err, ErrConstruction) {
		t.Errorf("expected ErrConstruction, got %v", err)
	}
}

func TestNewRejectsUnreadableEntrypoint(t *testing.T) {
	dir := t.TempDir()

	_, err := New(dir, filepath.Join(dir, "missing.typ"))
	if !errors.Is(err, ErrConstruction) {
		t.Errorf("expected ErrConstruction, got %v", err)
	}
}

func TestNewWithMainTextSkipsDisk(t *testing.T) {
	dir := t.TempDir()

	// The entrypoint does not exist on disk yet (open-before-save).
	w, err := New(dir, filepath.Join(dir, "draft.typ"), WithMainText("= Draft\n"))
	if err != nil {
		t.Fatalf("New with preload failed: %v", err)
	}

	src, err := w.Main()
	if err != nil {
		t.Fatalf("Main failed: %v", err)
	}
	if src.Text() != "= Draft\n" {
		t.Errorf("unexpected text %q", src.Text())
	}
}

func TestNewAcceptsDescendants(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "ok")

	// Entrypoint directly inside the root is the common case; also accept
	// nested descendants.
	nested := filepath.Join(dir, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	nestedMain := filepath.Join(nested, "chapter.typ")
	if err := os.WriteFile(nestedMain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(dir, main); err != nil {
		t.Errorf("direct child rejected: %v", err)
	}
	if _, err := New(dir, nestedMain); err != nil {
		t.Errorf("nested descendant rejected: %v", err)
	}
}

func TestCompileReplacesDocumentAndEvicts(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "= Doc\n")

	comp := &fakeCompiler{}
	w, err := New(dir, main, WithCompiler(comp))
	if err != nil {
		t.Fatal(err)
	}

	doc, diags := w.Compile()
	if doc == nil {
		t.Fatalf("expected document, got diagnostics %v", diags)
	}
	if w.LastDocument() != doc {
		t.Error("last document not replaced on success")
	}
	if len(comp.evicts) != 1 || comp.evicts[0] != 10 {
		t.Errorf("expected one evict(10), got %v", comp.evicts)
	}
}

func TestCompileFailureKeepsLastDocumentAndEvicts(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "= Doc\n")

	comp := &fakeCompiler{}
	w, err := New(dir, main, WithCompiler(comp))
	if err != nil {
		t.Fatal(err)
	}

	good, _ := w.Compile()

	comp.run = func(v View) (*Document, []Diagnostic) {
		return nil, []Diagnostic{
			{Severity: SeverityError, Message: "unexpected token"},
			{Severity: SeverityWarning, Message: "unused import"},
		}
	}
	doc, diags := w.Compile()
	if doc != nil {
		t.Fatal("expected failure")
	}
	if len(diags) != 2 || diags[0].Message != "unexpected token" {
		t.Errorf("diagnostic order not preserved: %v", diags)
	}
	if w.LastDocument() != good {
		t.Error("failed compile must not discard the last good document")
	}
	// The sweep runs after every attempt, success or failure.
	if len(comp.evicts) != 2 {
		t.Errorf("expected evict after every attempt, got %v", comp.evicts)
	}
}

func TestCompileWithoutCompiler(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}

	doc, diags := w.Compile()
	if doc != nil || len(diags) != 1 {
		t.Errorf("expected a single diagnostic, got doc=%v diags=%v", doc, diags)
	}
}

func TestCompileObservesPriorEdits(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "abc\ndef")

	var seen string
	comp := &fakeCompiler{run: func(v View) (*Document, []Diagnostic) {
		src, err := v.Main()
		if err != nil {
			return nil, []Diagnostic{{Message: err.Error()}}
		}
		seen = src.Text()
		return &Document{Pages: 1}, nil
	}}

	w, err := New(dir, main, WithCompiler(comp))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.UpdateFile(main, source.Range{
		Start: source.Position{Line: 0, Column: 1},
		End:   source.Position{Line: 0, Column: 2},
	}, "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := w.UpdateFile(main, source.Range{
		Start: source.Position{Line: 1, Column: 0},
		End:   source.Position{Line: 1, Column: 0},
	}, ">"); err != nil {
		t.Fatal(err)
	}

	w.Compile()
	if seen != "aXc\n>def" {
		t.Errorf("compile observed %q, expected all edits applied", seen)
	}
}

func TestSourceRoutesLocalIdentifiers(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "#include \"chapter.typ\"")
	if err := os.WriteFile(filepath.Join(dir, "chapter.typ"), []byte("= Chapter\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}

	src, err := w.Source(source.FileID{Path: "chapter.typ"})
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if src.Text() != "= Chapter\n" {
		t.Errorf("unexpected text %q", src.Text())
	}

	// The read-through memoizes: an edit now succeeds without re-reading.
	if _, err := w.UpdateFile(filepath.Join(dir, "chapter.typ"), source.Range{
		Start: source.Position{Line: 0, Column: 0},
		End:   source.Position{Line: 0, Column: 1},
	}, "#"); err != nil {
		t.Errorf("edit after read-through failed: %v", err)
	}
}

func TestSourceMissingLocalFile(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Source(source.FileID{Path: "nope.typ"})
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSourceRoutesPackageIdentifiers(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	// Pre-populate the package cache so resolution is a pure directory hit.
	cacheRoot := t.TempDir()
	pkgDir := filepath.Join(cacheRoot, "preview", "example", "0.1.0")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "lib.typ"), []byte("#let x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := pkgcache.New(pkgcache.WithCacheDir(cacheRoot))
	w, err := New(dir, main, WithPackages(cache))
	if err != nil {
		t.Fatal(err)
	}

	src, err := w.Source(source.FileID{Pkg: "@preview/example:0.1.0", Path: "lib.typ"})
	if err != nil {
		t.Fatalf("package source failed: %v", err)
	}
	if src.Text() != "#let x = 1" {
		t.Errorf("unexpected text %q", src.Text())
	}

	// Raw file access routes the same way.
	data, err := w.File(source.FileID{Pkg: "@preview/example:0.1.0", Path: "lib.typ"})
	if err != nil {
		t.Fatalf("package file failed: %v", err)
	}
	if string(data) != "#let x = 1" {
		t.Errorf("unexpected bytes %q", data)
	}
}

func TestSourcePackageWithoutCache(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Source(source.FileID{Pkg: "@preview/example:0.1.0", Path: "lib.typ"})
	if err == nil {
		t.Error("expected failure without a package cache")
	}
}

func TestCompleteUsesLastDocument(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "#te")

	completer := &fakeCompleter{items: []CompletionItem{
		{Label: "text", Kind: CompletionFunc},
		{Label: "terms", Kind: CompletionFunc},
	}}
	comp := &fakeCompiler{}

	w, err := New(dir, main, WithCompiler(comp), WithCompleter(completer))
	if err != nil {
		t.Fatal(err)
	}

	// Before any compile the engine still runs, with nil context.
	items := w.Complete(main, source.Position{Line: 0, Column: 3})
	if len(items) != 2 || items[0].Label != "text" || items[1].Label != "terms" {
		t.Fatalf("engine order not preserved: %v", items)
	}
	if completer.doc != nil {
		t.Error("expected nil document before first successful compile")
	}
	if completer.offset != 3 {
		t.Errorf("expected offset 3, got %d", completer.offset)
	}

	doc, _ := w.Compile()
	w.Complete(main, source.Position{Line: 0, Column: 3})
	if completer.doc != doc {
		t.Error("completion did not receive the last compiled document")
	}
}

func TestCompleteEdgeCases(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "abc")

	completer := &fakeCompleter{items: []CompletionItem{{Label: "x"}}}
	w, err := New(dir, main, WithCompleter(completer))
	if err != nil {
		t.Fatal(err)
	}

	if items := w.Complete(filepath.Join(dir, "unknown.typ"), source.Position{}); len(items) != 0 {
		t.Error("unknown path must yield an empty result")
	}
	if items := w.Complete(main, source.Position{Line: 9, Column: 0}); len(items) != 0 {
		t.Error("out-of-bounds cursor must yield an empty result")
	}
}

func TestTodayIsFixedEpoch(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !w.Today().Equal(want) {
		t.Errorf("expected fixed epoch, got %v", w.Today())
	}
	if !w.Today().Equal(w.Today()) {
		t.Error("date oracle must be stable")
	}
}

func TestLibrarySingleton(t *testing.T) {
	dir := t.TempDir()
	main := writeMain(t, dir, "x")

	w, err := New(dir, main)
	if err != nil {
		t.Fatal(err)
	}
	if w.Library() != w.Library() {
		t.Error("library handle must be the same instance per world")
	}
}
