// Package fonts discovers and serves font faces to the compiler.
//
// The catalog is built in two passes with a fixed concatenation order:
// first the embedded fallback set (basic Latin text, math, and monospace
// faces bundled with the binary), then every face discovered in the host's
// font directories. The resulting book of metadata is ordered and immutable;
// callers address fonts purely by index, so index-to-metadata correspondence
// never changes once the catalog is constructed.
//
// Embedded faces are resident from the start. Discovered faces record only
// their path and face index at construction; the bytes are materialized on
// first access and memoized forever. A face whose file cannot be read
// resolves to absent and is not retried for the life of the process.
package fonts
