package provider

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Harshas66/smart-grocery-assistant/internal/cache"
	"github.com/Harshas66/smart-grocery-assistant/internal/offline"

	"go.uber.org/zap"
)

type Config struct {
	// Required unless Offline is set.
	BaseURL string
	Keys    []string

	// CDNBaseURL is the image host used to resolve bare filenames and
	// synthesize URLs from recipe ids (default: the provider's image CDN).
	CDNBaseURL string

	UpstreamTimeout time.Duration // per-attempt timeout (default: 12s)
	ListTTL         time.Duration // list-result cache freshness window (default: 72h)
	MaxIngredients  int           // ingredients sent per query (default: 20)
	DefaultNumber   int           // result count when the request leaves it 0 (default: 10)

	// Offline disables all network I/O: searches serve from cache or the
	// offline catalog only.
	Offline bool

	// Optional connection pool settings
	MaxIdleConns        int // default: 100
	MaxIdleConnsPerHost int // default: 100

	// Custom HTTP client (for testing or special configs)
	HTTPClient *http.Client
}

// Validate checks required fields only.
func (c *Config) Validate() error {
	if c.Offline {
		return nil
	}
	if c.BaseURL == "" {
		return errors.New("BaseURL is required")
	}
	if len(c.Keys) == 0 {
		return errors.New("at least one API key is required")
	}
	return nil
}

// WithDefaults returns a copy of Config with sane defaults applied.
func (c *Config) WithDefaults() Config {
	cfg := *c

	// Normalize URLs: trim trailing slashes so we can safely append paths.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.CDNBaseURL = strings.TrimRight(cfg.CDNBaseURL, "/")

	if cfg.CDNBaseURL == "" {
		cfg.CDNBaseURL = "https://img.spoonacular.com/recipes"
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 12 * time.Second
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 72 * time.Hour
	}
	if cfg.MaxIngredients <= 0 {
		cfg.MaxIngredients = 20
	}
	if cfg.DefaultNumber <= 0 {
		cfg.DefaultNumber = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 100
	}

	return cfg
}

// Client talks to the external recipe API and owns the two fallback tiers
// below it: the result cache and the offline catalog. All upstream failures
// are absorbed here; callers always get a usable (possibly degraded) result.
type Client struct {
	cfg        Config
	httpClient *http.Client
	keys       *KeyPool
	store      cache.Store
	catalog    *offline.Catalog
	logger     *zap.Logger
}

// NewClient creates a provider client with the given configuration.
func NewClient(cfg Config, store cache.Store, catalog *offline.Catalog, logger *zap.Logger) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if catalog == nil {
		return nil, errors.New("offline catalog is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: defaultTransport(cfg),
		}
	}
	// The per-attempt budget lives on the client so a single unresponsive
	// upstream cannot stall the whole request.
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.UpstreamTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		keys:       NewKeyPool(cfg.Keys),
		store:      store,
		catalog:    catalog,
		logger:     logger.Named("provider"),
	}, nil
}

// Keys exposes the credential pool. Useful for tests asserting rotation.
func (c *Client) Keys() *KeyPool {
	return c.keys
}

// defaultTransport creates a production-ready HTTP transport
// with connection pooling and reasonable timeouts.
func defaultTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
