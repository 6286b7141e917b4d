// Package upstream is the HTTP JSON client for the external catalog
// data service. It is the only place that talks to the collaborator;
// everything it returns is already normalized for the tree engine.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"pricewatch.GO/catalog"
	"pricewatch.GO/config"
	"pricewatch.GO/core/cache"
)

// Catalog is one top-level product collection summary.
type Catalog struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	CategoriesCount int    `json:"categories_count"`
	ProductsCount   int    `json:"products_count"`
}

// FilterQuery is the server-evaluated minimum-price filter request.
type FilterQuery struct {
	CatalogID    int               `json:"catalog_id"`
	MinPrice     float64           `json:"min_price"`
	ExchangeRate float64           `json:"exchange_rate"`
	PriceTier    catalog.PriceTier `json:"price_tier"`
	CategoryIDs  []int             `json:"category_ids"`
}

// CategoryFilterRow is one per-category result of a price-filter query.
type CategoryFilterRow struct {
	CategoryID    int    `json:"category_id"`
	CategoryName  string `json:"category_name"`
	ProductsCount int    `json:"products_count"`
	WithSources   int    `json:"with_sources"`
}

// Client calls the upstream service. Category trees are cached (Redis
// when configured, in-process otherwise) under a per-catalog tag so a
// refresh can invalidate one catalog without touching the rest.
type Client struct {
	base           string
	token          string
	httpClient     *http.Client
	fetchTimeout   time.Duration
	refreshTimeout time.Duration
	cacheTTL       int64
	mem            *cache.Cache
}

// New builds a client from environment configuration.
func New() *Client {
	return &Client{
		base:           config.UpstreamBaseURL(),
		token:          config.UpstreamToken(),
		httpClient:     &http.Client{},
		fetchTimeout:   config.UpstreamFetchTimeout(),
		refreshTimeout: config.UpstreamRefreshTimeout(),
		cacheTTL:       config.UpstreamCacheTTL(),
		mem:            cache.GetInstance(),
	}
}

// NewWithBase builds a client against an explicit base URL with caching
// disabled. Used by tests.
func NewWithBase(base string) *Client {
	return &Client{
		base:           base,
		httpClient:     &http.Client{},
		fetchTimeout:   10 * time.Second,
		refreshTimeout: 30 * time.Second,
		mem:            cache.NewCache(),
	}
}

// Catalogs fetches the catalog list.
func (c *Client) Catalogs(ctx context.Context) ([]Catalog, error) {
	var out []Catalog
	if err := c.doJSON(ctx, http.MethodGet, "/public/catalogs", nil, &out, c.fetchTimeout); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories fetches and normalizes the category tree for a catalog.
func (c *Client) Categories(ctx context.Context, catalogName string) ([]*catalog.Category, error) {
	if v, ok := c.cacheGet("categories", catalogName); ok {
		if tree, ok := v.([]*catalog.Category); ok {
			return tree, nil
		}
	}
	if tree, ok := c.redisGetTree(catalogName); ok {
		c.mem.SetN([]interface{}{"categories", catalogName}, tree, c.cacheTTL, []string{"catalog:" + catalogName})
		return tree, nil
	}

	var raw []interface{}
	path := "/public/categories/" + url.PathEscape(catalogName)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw, c.fetchTimeout); err != nil {
		return nil, err
	}
	tree := catalog.Normalize(raw)
	c.cacheSet(tree, catalogName, "categories", catalogName)
	return tree, nil
}

// CategoriesStats fetches aggregate counts for a category id set.
func (c *Client) CategoriesStats(ctx context.Context, catalogName string, ids []int) ([]catalog.Stats, error) {
	body := map[string][]int{"category_ids": dedup(ids)}
	var out []catalog.Stats
	path := "/public/categories-stats/" + url.PathEscape(catalogName)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out, c.fetchTimeout); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoriesWithProducts fetches the selected categories with their full
// product lists. An empty id set never reaches the wire: the backend
// rejects it with a 400, and the UI treats it as "nothing selected".
func (c *Client) CategoriesWithProducts(ctx context.Context, catalogID int, ids []int) ([]*catalog.Category, error) {
	if len(ids) == 0 {
		return []*catalog.Category{}, nil
	}
	body := map[string][]int{"category_ids": ids}
	var raw []interface{}
	path := fmt.Sprintf("/public/categories-with-products/%d", catalogID)
	err := c.doJSON(ctx, http.MethodPost, path, body, &raw, c.fetchTimeout)
	if err != nil {
		if IsEmptyIDsRejection(err) {
			return []*catalog.Category{}, nil
		}
		return nil, err
	}
	return catalog.Normalize(raw), nil
}

// FilterCategoriesByPrice runs the minimum-price filter, returning
// per-category counts.
func (c *Client) FilterCategoriesByPrice(ctx context.Context, q FilterQuery) ([]CategoryFilterRow, error) {
	var out []CategoryFilterRow
	if err := c.doJSON(ctx, http.MethodPost, "/public/filter/categories-by-price", q, &out, c.fetchTimeout); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterProductsByPrice runs the minimum-price filter, returning the
// matching products themselves.
func (c *Client) FilterProductsByPrice(ctx context.Context, q FilterQuery) ([]*catalog.Product, error) {
	var out []*catalog.Product
	if err := c.doJSON(ctx, http.MethodPost, "/public/filter/products-by-price", q, &out, c.fetchTimeout); err != nil {
		return nil, err
	}
	for _, p := range out {
		if p != nil && p.Sources == nil {
			p.Sources = []*catalog.Source{}
		}
	}
	return out, nil
}

// RefreshProduct triggers a competitor-source refresh for one product,
// keyed by part number, and returns the freshly discovered listings.
// This is the slow endpoint — it runs a marketplace search upstream.
func (c *Client) RefreshProduct(ctx context.Context, partNumber string) ([]*catalog.Source, error) {
	var out []*catalog.Source
	path := "/search/refresh/" + url.PathEscape(partNumber)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out, c.refreshTimeout); err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateCatalog drops every cached payload for a catalog. Called
// after refreshes so the next tree fetch sees the new source data.
func (c *Client) InvalidateCatalog(catalogName string) {
	c.mem.DeleteByTag("catalog:" + catalogName)
	if config.RedisClient != nil {
		if err := config.RedisClient.Del(config.RedisCtx(), "categories|"+catalogName).Err(); err != nil {
			log.Printf("redis invalidate %s: %v", catalogName, err)
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream %s %s: decode: %w", method, path, err)
	}
	return nil
}

// cacheGet reads from the in-process cache.
func (c *Client) cacheGet(keys ...interface{}) (interface{}, bool) {
	if v, ok := c.mem.GetN(keys...); ok {
		return v, true
	}
	return nil, false
}

// redisGetTree restores a cached category tree from Redis, so a fresh
// process skips the first upstream fetch. Keys match cacheSet.
func (c *Client) redisGetTree(catalogName string) ([]*catalog.Category, bool) {
	if c.cacheTTL == 0 || config.RedisClient == nil {
		return nil, false
	}
	buf, err := config.RedisClient.Get(config.RedisCtx(), "categories|"+catalogName).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*catalog.Category
	if err := json.Unmarshal(buf, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

func (c *Client) cacheSet(value interface{}, catalogName string, keys ...interface{}) {
	if c.cacheTTL == 0 {
		return
	}
	c.mem.SetN(keys, value, c.cacheTTL, []string{"catalog:" + catalogName})
	if config.RedisClient != nil {
		if buf, err := json.Marshal(value); err == nil {
			key := fmt.Sprintf("%v|%v", keys[0], catalogName)
			config.RedisClient.Set(config.RedisCtx(), key, buf, time.Duration(c.cacheTTL)*time.Second)
		}
	}
}

func dedup(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
