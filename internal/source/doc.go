// Package source provides the mutable source-text cache backing a
// compilation world.
//
// Each open or read-through file is held as a Source: the full text plus a
// line index that translates protocol line/column positions into byte
// offsets. The Store keys sources by absolute filesystem path and supports
// three mutations:
//
//   - Put: whole-file replacement (textDocument/didOpen, full sync)
//   - Edit: incremental range replacement (textDocument/didChange)
//   - GetOrLoad: cache-through disk read on behalf of the compiler
//
// # Coordinates
//
// Positions are zero-based (line, column) pairs. Columns count UTF-16 code
// units, matching the addressing scheme of the protocol layer that delivers
// edits. Translation always goes through the line index of the *current*
// text, never a client-held offset, because earlier edits shift byte
// positions.
//
// # Concurrency
//
// The Store is safe for concurrent use. Ordering of edits against a single
// source is the caller's responsibility; a world serializes all operations
// that touch its store.
package source
