// Package source fetches input datasets by URI. Remote datasets are read
// over HTTP, local ones from disk, and repeated fetches are served from an
// in-memory cache.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ErrUnsupportedScheme is returned for URIs no fetcher handles.
var ErrUnsupportedScheme = errors.New("unsupported uri scheme")

// Fetcher returns the raw bytes behind a URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FileFetcher reads local paths and file:// URIs.
type FileFetcher struct{}

// Fetch reads the file behind uri.
func (FileFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// HTTPFetcher downloads http and https URIs.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher whose requests time out after
// timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// Fetch downloads uri and fails on any non-2xx status.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", uri, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", uri, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", uri, err)
	}
	return data, nil
}

// Router dispatches on the URI scheme. URIs without a scheme are local
// paths.
type Router struct {
	File Fetcher
	HTTP Fetcher
}

// NewRouter returns a Router for local files and remote http(s) URIs.
func NewRouter(timeout time.Duration) *Router {
	return &Router{File: FileFetcher{}, HTTP: NewHTTPFetcher(timeout)}
}

// Fetch forwards uri to the fetcher for its scheme.
func (r *Router) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// single-letter schemes are windows drive letters
		return r.File.Fetch(ctx, uri)
	}
	switch u.Scheme {
	case "file":
		return r.File.Fetch(ctx, uri)
	case "http", "https":
		return r.HTTP.Fetch(ctx, uri)
	}
	return nil, fmt.Errorf("%s: %w", uri, ErrUnsupportedScheme)
}

// Cached memoizes another fetcher. Failed fetches are not cached.
type Cached struct {
	next   Fetcher
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCached wraps next with a cache whose entries expire after ttl.
func NewCached(next Fetcher, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		next:   next,
		cache:  cache.New(ttl, ttl*2),
		logger: logger,
	}
}

// Fetch returns the cached bytes for uri, fetching them on a miss.
func (c *Cached) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if cached, found := c.cache.Get(uri); found {
		if data, ok := cached.([]byte); ok {
			c.logger.Debug("source cache hit", zap.String("uri", uri))
			return data, nil
		}
	}
	data, err := c.next.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}
	c.cache.Set(uri, data, cache.DefaultExpiration)
	c.logger.Debug("source cached", zap.String("uri", uri), zap.Int("bytes", len(data)))
	return data, nil
}

// Forget drops uri from the cache.
func (c *Cached) Forget(uri string) {
	c.cache.Delete(uri)
}
