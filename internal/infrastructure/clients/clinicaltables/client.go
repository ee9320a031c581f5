package clinicaltables

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clintables/codefinder/internal/domain/providers"
	"github.com/clintables/codefinder/pkg/config"
	apperrors "github.com/clintables/codefinder/pkg/errors"
)

const maxListCap = 500

// SearchParams describes one Clinical Tables search request.
type SearchParams struct {
	Table         string
	Term          string
	MaxResults    int
	SearchFields  []string
	DisplayFields []string
	ExtraFields   []string
}

// Record is one normalized row of a Clinical Tables response.
type Record struct {
	Code    string
	Display string
	Extra   map[string]any
}

// Client is a pooled HTTP client for the Clinical Tables API. It is safe
// for concurrent use; the connection pool is shared across all adapters.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      providers.CacheProvider
	cacheTTL   int
}

// Option configures a Client.
type Option func(*Client)

// WithCache enables response caching through the given provider.
func WithCache(cache providers.CacheProvider, ttlSeconds int) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttlSeconds
	}
}

// NewClient creates a Clinical Tables client from configuration.
func NewClient(cfg *config.APIConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds * float64(time.Second))
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConnsPerHost: cfg.MaxIdleConnections,
		IdleConnTimeout:     90 * time.Second,
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries one Clinical Tables endpoint and returns normalized records.
// Failures (network, timeout, non-2xx, malformed body) are adapter errors.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Record, error) {
	values := url.Values{}
	values.Set("terms", p.Term)
	maxList := p.MaxResults
	if maxList > maxListCap {
		maxList = maxListCap
	}
	values.Set("maxList", strconv.Itoa(maxList))
	if len(p.SearchFields) > 0 {
		values.Set("sf", strings.Join(p.SearchFields, ","))
	}
	if len(p.DisplayFields) > 0 {
		values.Set("df", strings.Join(p.DisplayFields, ","))
	}
	if len(p.ExtraFields) > 0 {
		values.Set("ef", strings.Join(p.ExtraFields, ","))
	}

	cacheKey := c.makeCacheKey(p.Table, values)
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil {
			var raw []json.RawMessage
			if json.Unmarshal(data, &raw) == nil {
				return parseResponse(raw, p.ExtraFields), nil
			}
		}
	}

	endpoint := fmt.Sprintf("%s/%s/v3/search?%s", c.baseURL, p.Table, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewAdapterError(fmt.Sprintf("building request for %s", p.Table), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewAdapterError(fmt.Sprintf("request failed for %s", p.Table), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewAdapterError(
			fmt.Sprintf("HTTP %d from %s", resp.StatusCode, p.Table), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewAdapterError(fmt.Sprintf("reading response from %s", p.Table), err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewAdapterError(fmt.Sprintf("invalid response from %s", p.Table), err)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, body, c.cacheTTL)
	}

	return parseResponse(raw, p.ExtraFields), nil
}

// FetchParent looks up the display for a bare parent code, used for ICD-10
// hierarchy enrichment. Returns ok=false when no parent entry is found.
func (c *Client) FetchParent(ctx context.Context, table, parentCode string) (code, display string, ok bool, err error) {
	records, err := c.Search(ctx, SearchParams{
		Table:         table,
		Term:          parentCode,
		MaxResults:    1,
		SearchFields:  []string{"code", "name"},
		DisplayFields: []string{"code", "name"},
	})
	if err != nil {
		return "", "", false, err
	}
	if len(records) == 0 {
		return "", "", false, nil
	}
	return records[0].Code, records[0].Display, true, nil
}

func (c *Client) makeCacheKey(table string, values url.Values) string {
	sum := sha256.Sum256([]byte(values.Encode()))
	return "api:" + table + ":" + hex.EncodeToString(sum[:])[:16]
}
