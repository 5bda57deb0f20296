// Package httpcache caches API responses in memory, optionally persisted to disk.
package httpcache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

const (
	cacheFile    = "worldclock-cache.gob"
	saveInterval = 15 * time.Minute
	maxEntries   = 10_000
)

// Entry is one cached response body.
type Entry struct {
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
	Data      []byte    `json:"data"`
}

// Cache is an expiring key/value store for response bodies.
type Cache struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	now        func() time.Time
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

// New returns a memory-only cache.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      maxEntries,
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
		}),
		logger: logger,
		now:    time.Now,
		ttl:    ttl,
	}
}

// NewPersistent returns a cache that is loaded from dir and saved back
// periodically and on Close.
func NewPersistent(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := New(ttl, logger)
	c.dir = dir

	if err := c.loadFromDisk(); err != nil {
		c.logger.Warn("failed to load cache from disk", "error", err)
	}
	c.logger.Info("cache initialized", "dir", dir, "entries_loaded", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

func hashKey(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached body and ETag for key.
func (c *Cache) Get(key string) ([]byte, string, bool) {
	return c.lookup(hashKey([]byte(key)), key)
}

// Set stores data under key until the TTL passes.
func (c *Cache) Set(key string, data []byte, etag string) {
	c.store(hashKey([]byte(key)), key, data, etag)
}

// GetRequest is Get for a request whose body is part of the identity, such as a POST.
func (c *Cache) GetRequest(url string, body []byte) ([]byte, bool) {
	data, _, ok := c.lookup(hashKey([]byte(url), body), url)
	return data, ok
}

// SetRequest is Set for a request whose body is part of the identity.
func (c *Cache) SetRequest(url string, body, data []byte) {
	c.store(hashKey([]byte(url), body), url, data, "")
}

func (c *Cache) lookup(hashed, label string) ([]byte, string, bool) {
	entry, found := c.cache.GetIfPresent(hashed)
	if !found {
		c.logger.Debug("cache miss", "key", label, "reason", "not_found")
		return nil, "", false
	}
	if c.now().After(entry.ExpiresAt) {
		c.logger.Debug("cache miss", "key", label, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(hashed)
		return nil, "", false
	}
	return entry.Data, entry.ETag, true
}

func (c *Cache) store(hashed, label string, data []byte, etag string) {
	entry := Entry{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
		ETag:      etag,
	}
	c.cache.Set(hashed, entry)
	c.logger.Debug("cache set", "key", label, "expires_at", entry.ExpiresAt, "size", len(data))
}

// Stats reports the approximate number of entries.
func (c *Cache) Stats() map[string]any {
	return map[string]any{
		"size":       c.cache.EstimatedSize(),
		"persistent": c.dir != "",
	}
}

func (c *Cache) loadFromDisk() error {
	cachePath := filepath.Join(c.dir, cacheFile)

	file, err := os.Open(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Info("no existing cache file found", "path", cachePath)
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("Failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := c.now()
	valid := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			valid++
		}
	}

	c.logger.Info("loaded cache from disk",
		"path", cachePath,
		"total_entries", len(entries),
		"valid_entries", valid,
		"expired_entries", len(entries)-valid)
	return nil
}

func (c *Cache) saveToDisk() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cachePath := filepath.Join(c.dir, cacheFile)
	tempPath := cachePath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		// Only try to remove temp file if it still exists
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("Failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := c.now()
	for key, entry := range c.cache.All() {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
	}

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		_ = file.Close() //nolint:errcheck // best effort close on error path
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close() //nolint:errcheck // best effort close on error path
		return fmt.Errorf("syncing cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tempPath, cachePath); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Info("cache saved to disk", "entries", len(entries), "path", cachePath)
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops periodic saving and writes the cache one last time.
// It is a no-op for memory-only caches.
func (c *Cache) Close() error {
	if c.dir == "" {
		return nil
	}
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if err := c.saveToDisk(); err != nil {
		c.logger.Error("final cache save failed", "error", err)
		return err
	}
	c.logger.Info("cache closed and saved to disk")
	return nil
}

// HTTPClient is the subset of *http.Client the cached client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CachedClient wraps an HTTPClient and serves repeated 200 responses from a Cache.
// GET requests are keyed by URL; POST requests by URL and body.
type CachedClient struct {
	cache      *Cache
	httpClient HTTPClient
	logger     *slog.Logger
}

// NewCachedClient returns a client that consults cache before calling httpClient.
// A nil cache disables caching.
func NewCachedClient(cache *Cache, httpClient HTTPClient, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{cache: cache, httpClient: httpClient, logger: logger}
}

// Do performs req, answering from the cache when possible.
func (c *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if c.cache == nil || (req.Method != http.MethodGet && req.Method != http.MethodPost) {
		return c.httpClient.Do(req)
	}

	url := req.URL.String()

	var requestBody []byte
	if req.Method == http.MethodPost && req.Body != nil {
		var err error
		requestBody, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(requestBody))
	}

	var (
		cached []byte
		etag   string
		found  bool
	)
	if req.Method == http.MethodPost {
		cached, found = c.cache.GetRequest(url, requestBody)
	} else {
		cached, etag, found = c.cache.Get(url)
	}
	if found {
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(cached)),
			Header:     make(http.Header),
			Request:    req,
		}
		resp.Header.Set("X-From-Cache", "true")
		if etag != "" {
			resp.Header.Set("ETag", etag)
		}
		return resp, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", "error", closeErr)
	}
	if err != nil {
		return nil, err
	}

	if req.Method == http.MethodPost {
		c.cache.SetRequest(url, requestBody, body)
	} else {
		c.cache.Set(url, body, resp.Header.Get("ETag"))
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}
