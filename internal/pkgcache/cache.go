package pkgcache

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultNamespace is the registry namespace searched when a package
	// spec does not carry one.
	DefaultNamespace = "preview"

	defaultBaseURL = "https://packages.typst.org"
	defaultTimeout = 5 * time.Second
	userAgent      = "typstead/0.1.0"
)

// Ref identifies a remotely hosted package bundle.
type Ref struct {
	Namespace string
	Name      string
	Version   string
}

// String returns the canonical spec form "@namespace/name:version".
func (r Ref) String() string {
	return "@" + r.Namespace + "/" + r.Name + ":" + r.Version
}

// ParseSpec parses a package spec of the form "@namespace/name:version".
func ParseSpec(spec string) (Ref, error) {
	rest, ok := strings.CutPrefix(spec, "@")
	if !ok {
		return Ref{}, fmt.Errorf("%q: missing leading '@': %w", spec, ErrBadSpec)
	}
	ns, rest, ok := strings.Cut(rest, "/")
	if !ok || ns == "" {
		return Ref{}, fmt.Errorf("%q: missing namespace: %w", spec, ErrBadSpec)
	}
	name, version, ok := strings.Cut(rest, ":")
	if !ok || name == "" || version == "" {
		return Ref{}, fmt.Errorf("%q: missing name or version: %w", spec, ErrBadSpec)
	}
	return Ref{Namespace: ns, Name: name, Version: version}, nil
}

// Cache is a durable, append-only package cache. Resolution is memoized by
// directory existence; directories are safe for concurrent reads once
// present. Safe for concurrent use.
type Cache struct {
	root    string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCacheDir overrides the cache root directory.
func WithCacheDir(dir string) Option {
	return func(c *Cache) {
		if dir != "" {
			c.root = dir
		}
	}
}

// WithBaseURL overrides the package registry base URL.
func WithBaseURL(url string) Option {
	return func(c *Cache) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client used for fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithLogger sets the logger for fetch activity.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a package cache rooted at the platform cache directory.
func New(opts ...Option) *Cache {
	c := &Cache{
		baseURL: defaultBaseURL,
		// The default transport honors HTTP_PROXY/HTTPS_PROXY/NO_PROXY.
		client: &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}

	if dir, err := os.UserCacheDir(); err == nil {
		c.root = filepath.Join(dir, "typstead", "packages")
	} else {
		c.root = filepath.Join(os.TempDir(), "typstead", "packages")
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the canonical cache directory for ref without resolving it.
func (c *Cache) Dir(ref Ref) string {
	return filepath.Join(c.root, ref.Namespace, ref.Name, ref.Version)
}

// Resolve returns the local directory holding the extracted package,
// fetching and unpacking the remote archive on first use. A directory that
// already exists is returned as-is with no network access.
func (c *Cache) Resolve(ref Ref) (string, error) {
	dir := c.Dir(ref)
	if _, err := os.Stat(dir); err == nil {
		c.logger.Debug("package cache hit", "package", ref.String(), "dir", dir)
		return dir, nil
	}

	url := fmt.Sprintf("%s/%s/%s-%s.tar.gz", c.baseURL, ref.Namespace, ref.Name, ref.Version)
	c.logger.Info("downloading package", "package", ref.String(), "url", url, "dir", dir)

	if err := c.fetch(url, dir); err != nil {
		return "", fmt.Errorf("package %s: %w", ref.String(), err)
	}
	return dir, nil
}

// fetch downloads a gzipped tarball from url and unpacks it into dir.
// On extraction failure the partially written directory is removed so a
// retry starts from a clean miss.
func (c *Cache) fetch(url, dir string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrFetchFailed, resp.Status)
	}

	if err := extract(resp.Body, dir); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			c.logger.Warn("failed to clean up partial package dir", "dir", dir, "error", rmErr)
		}
		return fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}
	return nil
}

// extract gunzips and untars an archive stream into dir.
func extract(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := sanitizePath(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		default:
			// Symlinks and specials are not expected in package archives.
		}
	}
}

// sanitizePath joins name under dir, rejecting entries that would escape it.
func sanitizePath(dir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("archive entry %q escapes target directory", name)
	}
	return filepath.Join(dir, cleaned), nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
