// Package world composes the source cache, font catalog, and package cache
// into the compilation world a compiler run operates against.
//
// Each World is pinned to one root directory and one entrypoint file. The
// external compiler drives a compile by calling back into the world through
// the View interface: standard-library handle, font book and font-by-index,
// entrypoint source, source/binary lookup by file identifier, and a fixed
// current-date oracle. Package-relative identifiers route through the
// package cache; root-relative identifiers read through the world's source
// store.
//
// Operations on one world (compile, edit, complete) are serialized by an
// exclusive lock; operations on different worlds proceed independently. A
// compile issued after N edits therefore observes all N edits, never a
// subset. The world also owns the most recent successfully compiled
// document, which the completion engine consumes as context.
//
// The compiler and completion engine themselves are external collaborators
// supplied at construction; this package only defines the interfaces they
// implement.
package world
