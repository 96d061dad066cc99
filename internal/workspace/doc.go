// Package workspace discovers project roots and routes file events to the
// owning compilation world.
//
// A project is declared by a typst.toml descriptor listing one or more
// document entries, each with an entrypoint and an optional root directory
// override. The Registry maps root directories to worlds: lookups walk a
// path's ancestors and the nearest registered root wins; paths with no
// registered ancestor get a synthesized single-file world rooted at their
// parent directory.
//
// The registry takes an exclusive lock for inserts and a shared lock for
// lookups. Inserts happen only during discovery or first-touch world
// creation, so the table is read-mostly.
package workspace
