package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCatalogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/catalogs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Catalog{{ID: 1, Name: "main", CategoriesCount: 12, ProductsCount: 340}})
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	got, err := c.Catalogs(context.Background())
	if err != nil {
		t.Fatalf("Catalogs: %v", err)
	}
	if len(got) != 1 || got[0].Name != "main" || got[0].ProductsCount != 340 {
		t.Fatalf("unexpected catalogs %+v", got)
	}
}

func TestCategoriesNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/categories/main" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"5","name":"Cables","leaf":1,"children":[null,{"id":6,"name":"USB"}]}]`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	tree, err := c.Categories(context.Background(), "main")
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(tree) != 1 || tree[0].ID != 5 || !tree[0].Leaf {
		t.Fatalf("normalization lost fields: %+v", tree[0])
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != 6 {
		t.Fatalf("nil child gap not dropped: %+v", tree[0].Children)
	}
}

func TestCategoriesServedFromCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`[{"id":1,"name":"Root","leaf":0}]`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	c.cacheTTL = 60
	for i := 0; i < 2; i++ {
		tree, err := c.Categories(context.Background(), "main")
		if err != nil {
			t.Fatalf("Categories: %v", err)
		}
		if len(tree) != 1 || tree[0].ID != 1 {
			t.Fatalf("unexpected tree %+v", tree)
		}
	}
	if hits != 1 {
		t.Fatalf("expected one upstream fetch, got %d", hits)
	}

	c.InvalidateCatalog("main")
	if _, err := c.Categories(context.Background(), "main"); err != nil {
		t.Fatalf("Categories after invalidate: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected refetch after invalidate, got %d hits", hits)
	}
}

func TestCategoriesStatsDedupsIDs(t *testing.T) {
	var sent struct {
		CategoryIDs []int `json:"category_ids"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		w.Write([]byte(`[{"category_id":3,"total_products":7,"with_sources":2}]`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	stats, err := c.CategoriesStats(context.Background(), "main", []int{3, 4, 3})
	if err != nil {
		t.Fatalf("CategoriesStats: %v", err)
	}
	if len(sent.CategoryIDs) != 2 {
		t.Fatalf("expected deduped ids, sent %v", sent.CategoryIDs)
	}
	if len(stats) != 1 || stats[0].TotalProducts != 7 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCategoriesWithProductsEmptyIDsSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	got, err := c.CategoriesWithProducts(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("empty id set must not hit the backend")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}

func TestCategoriesWithProductsEmptyIDsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"category_ids must not be empty"}`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	got, err := c.CategoriesWithProducts(context.Background(), 1, []int{9})
	if err != nil {
		t.Fatalf("400 for empty ids should map to empty result, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestAPIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"catalog not found"}`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	_, err := c.Catalogs(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Detail != "catalog not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestRefreshProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/search/refresh/AB-120" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":1,"retail_price":950,"source_name":"shop-a"}]`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	sources, err := c.RefreshProduct(context.Background(), "AB-120")
	if err != nil {
		t.Fatalf("RefreshProduct: %v", err)
	}
	if len(sources) != 1 || sources[0].RetailPrice != 950 {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestAuthHeader(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewWithBase(srv.URL)
	c.token = "secret"
	if _, err := c.Catalogs(context.Background()); err != nil {
		t.Fatalf("Catalogs: %v", err)
	}
	if auth != "Bearer secret" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
}
