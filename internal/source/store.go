package source

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

// ReadFileFunc reads a file from disk. Overridable for tests.
type ReadFileFunc func(path string) ([]byte, error)

// Store caches sources by absolute filesystem path. Lookups take a shared
// lock; mutations take an exclusive lock. Sources live until the owning
// world is torn down; there is no eviction.
type Store struct {
	mu      sync.RWMutex
	sources map[string]*Source

	logger   *slog.Logger
	readFile ReadFileFunc

	diskReads atomic.Int64
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for cache activity.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(st *Store) {
		if logger != nil {
			st.logger = logger
		}
	}
}

// WithReadFile overrides the disk read function.
func WithReadFile(fn ReadFileFunc) StoreOption {
	return func(st *Store) {
		if fn != nil {
			st.readFile = fn
		}
	}
}

// NewStore creates an empty source store.
func NewStore(opts ...StoreOption) *Store {
	st := &Store{
		sources:  make(map[string]*Source),
		logger:   slog.Default(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Put inserts or wholesale-replaces the text cached for path, discarding any
// previous content. It returns the live source.
func (st *Store) Put(id FileID, path, text string) *Source {
	st.mu.Lock()
	defer st.mu.Unlock()

	if src, ok := st.sources[path]; ok {
		src.Replace(text)
		return src
	}
	src := New(id, path, text)
	st.sources[path] = src
	return src
}

// Get returns the cached source for path, if any. It never touches disk.
func (st *Store) Get(path string) (*Source, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	src, ok := st.sources[path]
	return src, ok
}

// Edit applies an incremental range edit to the source cached for path.
// Returns ErrNotFound if the path is not cached and ErrInvalidCoordinate if
// the range does not map onto the current text; in both cases the cached
// text is left untouched.
func (st *Store) Edit(path string, rng Range, replacement string) (ByteRange, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	src, ok := st.sources[path]
	if !ok {
		return ByteRange{}, fmt.Errorf("edit %s: %w", path, ErrNotFound)
	}
	br, err := src.Edit(rng, replacement)
	if err != nil {
		return ByteRange{}, fmt.Errorf("edit %s: %w", path, err)
	}
	return br, nil
}

// GetOrLoad returns the cached source for path, reading it from disk on a
// miss. The read memoizes: later lookups for the same path are served from
// memory. Returns ErrNotFound if the file cannot be read and
// ErrInvalidEncoding if its bytes are not valid UTF-8.
func (st *Store) GetOrLoad(id FileID, path string) (*Source, error) {
	st.mu.RLock()
	src, ok := st.sources[path]
	st.mu.RUnlock()
	if ok {
		return src, nil
	}

	data, err := st.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	st.diskReads.Add(1)

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("decode %s: %w", path, ErrInvalidEncoding)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Another reader may have loaded the path while the lock was free;
	// keep the first live source.
	if src, ok := st.sources[path]; ok {
		return src, nil
	}

	st.logger.Debug("source cached from disk", "path", path, "id", id.String())
	src = New(id, path, string(data))
	st.sources[path] = src
	return src, nil
}

// Len returns the number of cached sources.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sources)
}

// DiskReads returns how many disk reads the store has performed.
func (st *Store) DiskReads() int64 {
	return st.diskReads.Load()
}
