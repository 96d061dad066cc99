package fonts

import (
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

// ReadFileFunc reads a file from disk. Overridable for tests.
type ReadFileFunc func(path string) ([]byte, error)

// Font is one materialized face: the raw file bytes, the face index within
// the file, and the book metadata. Once materialized a Font is immutable
// and may be shared freely across compiles and worlds.
type Font struct {
	Info  Info
	Data  []byte
	Index int
}

// entry backs one book index. Embedded faces arrive resident; discovered
// faces record their path and face index and materialize on first access.
// Initialization races are harmless: the computed value is immutable, so
// last write equals first write.
type entry struct {
	path  string
	index int
	once  sync.Once
	font  *Font
}

// Catalog owns the font book and the lazily materialized faces behind it.
// Safe for concurrent use; a single catalog is typically shared by every
// world in the process.
type Catalog struct {
	book     Book
	entries  []*entry
	logger   *slog.Logger
	readFile ReadFileFunc
}

type catalogConfig struct {
	embedded fs.FS
	dirs     []string
	dirsSet  bool
	readFile ReadFileFunc
	probe    ProbeFunc
	logger   *slog.Logger
}

// Option configures catalog construction.
type Option func(*catalogConfig)

// WithEmbeddedFS overrides the bundled font tree.
func WithEmbeddedFS(fsys fs.FS) Option {
	return func(c *catalogConfig) {
		if fsys != nil {
			c.embedded = fsys
		}
	}
}

// WithSystemDirs replaces the platform font directories searched during
// discovery. Passing no directories disables system discovery.
func WithSystemDirs(dirs ...string) Option {
	return func(c *catalogConfig) {
		c.dirs = dirs
		c.dirsSet = true
	}
}

// WithReadFile overrides the disk read used for probing and
// materialization.
func WithReadFile(fn ReadFileFunc) Option {
	return func(c *catalogConfig) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

// WithProbe overrides the metadata prober.
func WithProbe(fn ProbeFunc) Option {
	return func(c *catalogConfig) {
		if fn != nil {
			c.probe = fn
		}
	}
}

// WithLogger sets the logger for discovery and materialization.
func WithLogger(logger *slog.Logger) Option {
	return func(c *catalogConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog builds the font book and entry list. The embedded pass runs
// first in lexical filename order, then discovery over the system font
// directories; the index space is exactly this concatenation order.
func NewCatalog(opts ...Option) *Catalog {
	cfg := catalogConfig{
		embedded: embeddedFS(),
		probe:    sfntProbe,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.readFile == nil {
		cfg.readFile = os.ReadFile
	}
	if !cfg.dirsSet {
		cfg.dirs = systemFontDirs()
	}

	cat := &Catalog{
		logger:   cfg.logger,
		readFile: cfg.readFile,
	}
	cat.addEmbedded(cfg.embedded, cfg.probe)
	for _, dir := range cfg.dirs {
		cat.addDiscovered(dir, cfg.probe)
	}

	cat.logger.Debug("font catalog built", "faces", len(cat.entries))
	return cat
}

// addEmbedded probes every bundled file and pushes its faces as resident
// entries.
func (cat *Catalog) addEmbedded(fsys fs.FS, probe ProbeFunc) {
	_ = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		infos, err := probe(data)
		if err != nil {
			// Non-font files in the asset tree are expected; skip quietly.
			return nil
		}
		for i, info := range infos {
			cat.book = append(cat.book, info)
			cat.entries = append(cat.entries, &entry{
				font: &Font{Info: info, Data: data, Index: i},
			})
		}
		return nil
	})
}

// addDiscovered probes every font file under dir and pushes its faces as
// lazy entries. Files that cannot be read or parsed are skipped.
func (cat *Catalog) addDiscovered(dir string, probe ProbeFunc) {
	for _, path := range listFontFiles(dir) {
		data, err := cat.readFile(path)
		if err != nil {
			cat.logger.Debug("skipping unreadable font", "path", path, "error", err)
			continue
		}
		infos, err := probe(data)
		if err != nil {
			cat.logger.Debug("skipping unparsable font", "path", path, "error", err)
			continue
		}
		for i, info := range infos {
			cat.book = append(cat.book, info)
			cat.entries = append(cat.entries, &entry{path: path, index: i})
		}
	}
}

// Book returns the ordered metadata index.
func (cat *Catalog) Book() Book { return cat.book }

// Len returns the number of faces.
func (cat *Catalog) Len() int { return len(cat.entries) }

// Font resolves the face at index, materializing it on first access. A face
// whose file cannot be read resolves to absent and is never retried.
func (cat *Catalog) Font(index int) (*Font, bool) {
	if index < 0 || index >= len(cat.entries) {
		return nil, false
	}
	e := cat.entries[index]
	e.once.Do(func() {
		if e.font != nil {
			return // resident embedded face
		}
		data, err := cat.readFile(e.path)
		if err != nil {
			cat.logger.Warn("font materialization failed", "path", e.path, "index", index, "error", err)
			return
		}
		e.font = &Font{Info: cat.book[index], Data: data, Index: e.index}
	})
	if e.font == nil {
		return nil, false
	}
	return e.font, true
}
