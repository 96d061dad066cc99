package workspace

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dshills/typstead/internal/world"
)

// Registry is the process-wide table mapping root directories to worlds.
// Lookups take a shared lock; inserts take an exclusive lock.
type Registry struct {
	mu     sync.RWMutex
	worlds map[string]*world.World

	worldOpts []world.WorldOption
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithWorldOptions sets the base options applied to every world the
// registry constructs (shared font catalog, package cache, compiler).
func WithWorldOptions(opts ...world.WorldOption) RegistryOption {
	return func(r *Registry) {
		r.worldOpts = opts
	}
}

// WithLogger sets the logger for discovery and registration.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		worlds: make(map[string]*world.World),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Find returns the world owning path by walking its ancestor directories;
// the nearest registered root wins.
func (r *Registry) Find(path string) (*world.World, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dir := filepath.Clean(abs)
	for {
		if w, ok := r.worlds[dir]; ok {
			return w, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, false
		}
		dir = parent
	}
}

// GetOrCreate returns the world owning path, synthesizing a single-file
// world rooted at the path's parent directory when no ancestor is
// registered.
func (r *Registry) GetOrCreate(path string, opts ...world.WorldOption) (*world.World, error) {
	if w, ok := r.Find(path); ok {
		return w, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(abs)

	w, err := world.New(root, abs, append(r.worldOpts, opts...)...)
	if err != nil {
		return nil, err
	}

	r.register(root, w)
	r.logger.Info("single-file world created", "root", root, "entrypoint", abs)
	return w, nil
}

// Discover loads the descriptor in each candidate root and registers a
// world per declared target. Candidates without a readable descriptor and
// targets whose entrypoint falls outside their root are skipped with a
// warning. Returns the number of worlds created.
func (r *Registry) Discover(candidateRoots []string) int {
	created := 0
	for _, dir := range candidateRoots {
		targets, err := LoadTargets(dir)
		if err != nil {
			r.logger.Warn("failed to load targets", "dir", dir, "error", err)
			continue
		}
		for _, target := range targets {
			w, err := world.New(target.RootDir, target.MainFile, r.worldOpts...)
			if err != nil {
				r.logger.Warn("skipping target",
					"root", target.RootDir, "entrypoint", target.MainFile, "error", err)
				continue
			}
			r.register(w.Root(), w)
			created++
		}
	}
	return created
}

// DiscoverTree globs for descriptor files under dir and discovers every
// directory containing one.
func (r *Registry) DiscoverTree(dir string) int {
	pattern := filepath.Join(dir, "**", DescriptorName)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		r.logger.Warn("descriptor glob failed", "pattern", pattern, "error", err)
		return 0
	}

	roots := make([]string, 0, len(matches))
	for _, match := range matches {
		roots = append(roots, filepath.Dir(match))
	}
	return r.Discover(roots)
}

// Len returns the number of registered worlds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.worlds)
}

// register inserts w under root. Duplicate roots replace the previous
// world (last writer wins); the replacement is logged because silently
// losing a target is a known sharp edge of multi-document descriptors
// sharing one root.
func (r *Registry) register(root string, w *world.World) {
	root = filepath.Clean(root)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.worlds[root]; ok {
		r.logger.Warn("replacing world for root",
			"root", root, "old_entrypoint", old.MainPath(), "new_entrypoint", w.MainPath())
	}
	r.worlds[root] = w
}
