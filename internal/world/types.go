package world

import (
	"time"

	"github.com/dshills/typstead/internal/fonts"
	"github.com/dshills/typstead/internal/source"
)

// Library is the standard-library handle exposed to the compiler. The world
// hands out the same instance for its whole lifetime; the compiler treats
// it as an immutable, hashable snapshot key.
type Library struct {
	// Symbol and scope data live with the compiler; the world only
	// guarantees identity stability.
	name string
}

// NewLibrary creates the standard library handle.
func NewLibrary() *Library {
	return &Library{name: "std"}
}

// Document is the artifact of a successful compile. Its layout data is
// opaque to this subsystem; the world keeps the most recent one for reuse
// by completion.
type Document struct {
	// Pages is the number of laid-out pages.
	Pages int
}

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is one compiler message, ordered as emitted.
type Diagnostic struct {
	Severity Severity
	Message  string
	Path     string
	Range    source.Range
}

// CompletionKind is the semantic class of a completion candidate.
type CompletionKind int

const (
	CompletionSyntax CompletionKind = iota
	CompletionFunc
	CompletionType
	CompletionParam
	CompletionConstant
	CompletionSymbol
)

// String returns the kind name.
func (k CompletionKind) String() string {
	switch k {
	case CompletionFunc:
		return "func"
	case CompletionType:
		return "type"
	case CompletionParam:
		return "param"
	case CompletionConstant:
		return "constant"
	case CompletionSymbol:
		return "symbol"
	default:
		return "syntax"
	}
}

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label string
	Kind  CompletionKind
}

// View is the callback surface the external compiler drives during a
// compile. Every method either returns a value or a typed failure; package
// fetches are the only network-bound calls and carry a short fixed timeout.
type View interface {
	// Library returns the world's standard-library singleton.
	Library() *Library

	// Book returns the ordered font metadata index.
	Book() fonts.Book

	// Font returns the materialized face at index, or false if absent.
	Font(index int) (*fonts.Font, bool)

	// Main returns the entrypoint source.
	Main() (*source.Source, error)

	// Source returns the text file addressed by id, reading through the
	// source cache.
	Source(id source.FileID) (*source.Source, error)

	// File returns the raw bytes of the file addressed by id.
	File(id source.FileID) ([]byte, error)

	// Today returns the compilation date. It is a fixed epoch value so
	// repeated compiles of unchanged input stay deterministic.
	Today() time.Time
}

// Compiler turns a world view into a document or an ordered list of
// diagnostics. Evict discards compiler-internal memoized values older than
// maxAge compile generations; the world invokes it after every attempt.
type Compiler interface {
	Compile(view View) (*Document, []Diagnostic)
	Evict(maxAge int)
}

// Completer produces completion candidates at a byte offset in src. The
// last compiled document, when available, is passed as context; a nil doc
// means no compile has succeeded yet.
type Completer interface {
	Complete(view View, doc *Document, src *source.Source, offset int) []CompletionItem
}
