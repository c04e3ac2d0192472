package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5 // req/s, PubChem's documented courtesy limit
	cacheDirName     = ".cache/metabopkn"
	userAgent        = "metabopkn (https://github.com/omnipathdb/metabopkn)"
)

// Client wraps the HTTP access shared by the network-backed resolvers: a
// short per-call timeout, a rate limiter for per-item REST lookups, and an
// on-disk cache for bulk cross-reference downloads.
//
// There is no retry: a failed call surfaces as an error that the resolver
// layer folds into "unresolved".
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	cacheDir string
	log      *zap.Logger
}

// ClientOption customizes the shared resolver HTTP client.
type ClientOption func(*Client)

// WithCacheDir places the bulk-download cache at dir instead of the default
// under the user's home directory.
func WithCacheDir(dir string) ClientOption {
	return func(c *Client) { c.cacheDir = dir }
}

// WithRateLimit overrides the per-item request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		}
	}
}

// NewClient builds the shared resolver HTTP client. The bulk-download cache
// lives under the user's home directory; when the home directory cannot be
// determined, downloads are not cached.
func NewClient(timeout time.Duration, log *zap.Logger, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cacheDir := ""
	if home, err := homedir.Dir(); err == nil {
		cacheDir = filepath.Join(home, cacheDirName)
	}
	c := &Client{
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
		cacheDir: cacheDir,
		log:      log.Named("http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a rate-limited GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v interface{}) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

// PostForm performs a rate-limited form POST and returns the response body.
// BioMart's martservice endpoint takes its XML query as a form field.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FetchCached downloads a bulk file, storing it under the cache directory
// keyed by name. Subsequent calls within any process read the cached copy;
// picking up upstream changes requires clearing the cache.
func (c *Client) FetchCached(ctx context.Context, rawURL, name string) (io.ReadCloser, error) {
	if c.cacheDir != "" {
		path := filepath.Join(c.cacheDir, name)
		if f, err := os.Open(path); err == nil {
			c.log.Debug("using cached download", zap.String("file", path))
			return f, nil
		}
	}

	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if c.cacheDir == "" {
		return body, nil
	}
	defer body.Close()

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	path := filepath.Join(c.cacheDir, name)
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, err
	}
	c.log.Info("bulk file downloaded", zap.String("url", rawURL), zap.String("file", path))
	return os.Open(path)
}

func (c *Client) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}
