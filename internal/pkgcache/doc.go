// Package pkgcache resolves remote package references to local directories.
//
// A package is identified by a (namespace, name, version) triple. Resolution
// is memoized by directory existence: once the canonical cache directory for
// a reference exists it is treated as complete, with no checksum or
// freshness check. On a miss the package archive is fetched from the remote
// registry with a short bounded timeout, gunzipped, and untarred into the
// cache directory. Extraction failures remove the partial directory before
// propagating, so a failed attempt never poisons a later retry.
//
// The cache lives under the platform cache directory
// (<cache>/typstead/packages/<namespace>/<name>/<version>) and persists
// across processes.
package pkgcache
