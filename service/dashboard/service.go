// Package dashboard owns the server-side state behind the comparison
// dashboard: the active catalog, its normalized category tree, the
// current filter snapshot and the category selection. All tree math
// lives in package catalog; this layer sequences backend calls and
// discards responses that arrive for a superseded state.
package dashboard

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"pricewatch.GO/catalog"
	"pricewatch.GO/search"
	"pricewatch.GO/upstream"
)

// Backend is the slice of the upstream client the dashboard needs.
// *upstream.Client satisfies it; tests substitute a double.
type Backend interface {
	Catalogs(ctx context.Context) ([]upstream.Catalog, error)
	Categories(ctx context.Context, catalogName string) ([]*catalog.Category, error)
	CategoriesStats(ctx context.Context, catalogName string, ids []int) ([]catalog.Stats, error)
	CategoriesWithProducts(ctx context.Context, catalogID int, ids []int) ([]*catalog.Category, error)
	FilterCategoriesByPrice(ctx context.Context, q upstream.FilterQuery) ([]upstream.CategoryFilterRow, error)
	FilterProductsByPrice(ctx context.Context, q upstream.FilterQuery) ([]*catalog.Product, error)
	RefreshProduct(ctx context.Context, partNumber string) ([]*catalog.Source, error)
}

// HistoryRecorder persists refresh and search events. A nil recorder
// disables history without changing behavior.
type HistoryRecorder interface {
	RecordRefresh(partNumber string, categoryID int, sources []*catalog.Source, took time.Duration) error
	RecordSearch(query string, results int) error
}

// Service is the dashboard state container. Every state transition that
// triggers a backend fetch bumps the generation counter; fetch results
// are applied only if the generation is still the one they were issued
// under, so a catalog switch mid-flight can never show stale data.
type Service struct {
	backend Backend
	history HistoryRecorder

	mu          sync.Mutex
	gen         uint64
	catalogID   int
	catalogName string
	tree        []*catalog.Category
	filtered    []*catalog.Category
	stats       catalog.StatsMap
	statsLoaded bool
	selection   *catalog.Selection
	params      FilterParams
	refreshing  map[int]struct{}
}

func New(backend Backend, history HistoryRecorder) *Service {
	return &Service{
		backend:    backend,
		history:    history,
		selection:  catalog.NewSelection(),
		params:     NewFilterParams(),
		refreshing: make(map[int]struct{}),
	}
}

// Catalogs lists the available catalogs.
func (s *Service) Catalogs(ctx context.Context) ([]upstream.Catalog, error) {
	return s.backend.Catalogs(ctx)
}

// SetCatalog switches the active catalog, clearing the selection and
// any active filter, then loads the new tree and its stats. A switch
// that races an older in-flight load wins: the older result is dropped.
func (s *Service) SetCatalog(ctx context.Context, id int, name string) ([]*catalog.Category, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.catalogID = id
	s.catalogName = name
	s.tree = nil
	s.filtered = nil
	s.stats = nil
	s.statsLoaded = false
	s.selection.Clear()
	s.params = NewFilterParams().WithExchangeRate(s.params.ExchangeRate())
	s.mu.Unlock()

	tree, err := s.backend.Categories(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return tree, nil
	}
	s.tree = tree
	s.mu.Unlock()

	if err := s.loadStats(ctx, gen, name, tree); err != nil {
		log.Printf("stats load for %s: %v", name, err)
	}
	return tree, nil
}

func (s *Service) loadStats(ctx context.Context, gen uint64, name string, tree []*catalog.Category) error {
	ids := catalog.CollectIDs(tree)
	if len(ids) == 0 {
		s.mu.Lock()
		if s.gen == gen {
			s.stats = catalog.StatsMap{}
			s.statsLoaded = true
		}
		s.mu.Unlock()
		return nil
	}
	stats, err := s.backend.CategoriesStats(ctx, name, ids)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.gen == gen {
		m := make(catalog.StatsMap, len(stats))
		for _, st := range stats {
			m[st.CategoryID] = st
		}
		s.stats = m
		s.statsLoaded = true
	}
	s.mu.Unlock()
	return nil
}

// Catalog returns the active catalog id and name.
func (s *Service) Catalog() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogID, s.catalogName
}

// Tree returns the tree the UI should render: the filtered view while a
// minimum-price filter is active, the full tree otherwise.
func (s *Service) Tree() []*catalog.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filtered != nil {
		return s.filtered
	}
	return s.tree
}

// Stats returns the per-category aggregates and whether they finished
// loading. Missing entries render as loading, zero entries as empty.
func (s *Service) Stats() (catalog.StatsMap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, s.statsLoaded
}

// Search runs a name search over the full tree and records the query.
func (s *Service) Search(query string) catalog.SearchResult {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()

	res := catalog.Search(tree, query)
	if s.history != nil && query != "" {
		if err := s.history.RecordSearch(query, len(res.Results)); err != nil {
			log.Printf("record search: %v", err)
		}
	}
	return res
}

// Params returns the current filter snapshot.
func (s *Service) Params() FilterParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetExchangeRate updates the currency multiplier for later filters.
func (s *Service) SetExchangeRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = s.params.WithExchangeRate(rate)
}

// ApplyFilter evaluates a minimum-price filter over the selected
// categories and installs the pruned tree. The given params become the
// active snapshot; a stale response never replaces a newer filter.
func (s *Service) ApplyFilter(ctx context.Context, p FilterParams) ([]*catalog.Category, error) {
	s.mu.Lock()
	if len(p.categoryIDs) == 0 {
		p = p.WithCategoryIDs(s.selection.IDs())
	}
	if !p.Active() {
		s.mu.Unlock()
		return nil, fmt.Errorf("filter needs a minimum price and at least one category")
	}
	s.gen++
	gen := s.gen
	s.params = p
	catalogID := s.catalogID
	tree := s.tree
	s.mu.Unlock()

	q := upstream.FilterQuery{
		CatalogID:    catalogID,
		MinPrice:     *p.MinPrice(),
		ExchangeRate: p.ExchangeRate(),
		PriceTier:    p.PriceTier(),
		CategoryIDs:  p.CategoryIDs(),
	}
	rows, err := s.backend.FilterCategoriesByPrice(ctx, q)
	if err != nil {
		return nil, err
	}

	stats := make([]catalog.Stats, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, catalog.Stats{
			CategoryID:    r.CategoryID,
			TotalProducts: r.ProductsCount,
			WithSources:   r.WithSources,
			FilteredCount: r.ProductsCount,
		})
	}
	pruned := catalog.FilterByIDs(tree, catalog.KeepSet(stats, true))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return pruned, nil
	}
	s.filtered = pruned
	for _, st := range stats {
		if cur, ok := s.stats[st.CategoryID]; ok {
			cur.FilteredCount = st.FilteredCount
			s.stats[st.CategoryID] = cur
		} else {
			if s.stats == nil {
				s.stats = catalog.StatsMap{}
			}
			s.stats[st.CategoryID] = st
		}
	}
	return pruned, nil
}

// FilterProducts returns the products matching the active filter.
func (s *Service) FilterProducts(ctx context.Context) ([]*catalog.Product, error) {
	s.mu.Lock()
	p := s.params
	catalogID := s.catalogID
	s.mu.Unlock()

	if !p.Active() {
		return nil, fmt.Errorf("no active price filter")
	}
	return s.backend.FilterProductsByPrice(ctx, upstream.FilterQuery{
		CatalogID:    catalogID,
		MinPrice:     *p.MinPrice(),
		ExchangeRate: p.ExchangeRate(),
		PriceTier:    p.PriceTier(),
		CategoryIDs:  p.CategoryIDs(),
	})
}

// ClearFilter drops the filtered view and the minimum price, keeping
// the selection and exchange rate.
func (s *Service) ClearFilter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearFilterLocked()
}

// clearFilterLocked resets the filter state. Caller holds s.mu.
func (s *Service) clearFilterLocked() {
	s.gen++
	s.filtered = nil
	s.params = s.params.WithoutMinPrice()
	for id, st := range s.stats {
		st.FilteredCount = 0
		s.stats[id] = st
	}
}

// Toggle flips one category in the selection. Only selectable nodes
// (leaf flag or childless) are accepted.
func (s *Service) Toggle(id int) (catalog.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node := catalog.FindByID(s.tree, id)
	if node == nil {
		return catalog.NoticeNone, fmt.Errorf("category %d not found", id)
	}
	if !node.IsSelectable() {
		return catalog.NoticeNone, fmt.Errorf("category %d is not selectable", id)
	}
	return s.selection.Toggle(id), nil
}

// SelectAllLeaves selects the leaves of the visible tree, up to the
// selection cap, in tree order.
func (s *Service) SelectAllLeaves() catalog.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree := s.tree
	if s.filtered != nil {
		tree = s.filtered
	}
	return s.selection.SelectAll(catalog.CollectLeafIDs(tree))
}

// ClearSelection empties the selection and drops the price filter tied
// to it; the tree reverts to the unfiltered view.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
	s.clearFilterLocked()
}

// SelectedIDs returns the selected category ids in selection order.
func (s *Service) SelectedIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// SelectedProducts fetches the selected categories with full product
// lists. An empty selection yields an empty result without a fetch.
func (s *Service) SelectedProducts(ctx context.Context) ([]*catalog.Category, error) {
	s.mu.Lock()
	ids := s.selection.IDs()
	catalogID := s.catalogID
	s.mu.Unlock()
	return s.backend.CategoriesWithProducts(ctx, catalogID, ids)
}

// Refreshing reports whether a competitor refresh is running for the
// given category.
func (s *Service) Refreshing(categoryID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.refreshing[categoryID]
	return ok
}

// RefreshCategory re-runs the competitor search for every product in
// the category's subtree, strictly one product at a time in listed
// order. The upstream search service throttles by client, so running
// these concurrently only trips its rate limit. Returns the number of
// products refreshed. A catalog switch mid-refresh stops the loop and
// discards remaining work.
func (s *Service) RefreshCategory(ctx context.Context, categoryID int) (int, error) {
	s.mu.Lock()
	if _, busy := s.refreshing[categoryID]; busy {
		s.mu.Unlock()
		return 0, fmt.Errorf("category %d refresh already running", categoryID)
	}
	node := catalog.FindByID(s.tree, categoryID)
	if node == nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("category %d not found", categoryID)
	}
	gen := s.gen
	s.refreshing[categoryID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.refreshing, categoryID)
		s.mu.Unlock()
	}()

	products := catalog.CollectProducts(node)
	done := 0
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale {
			return done, nil
		}

		started := time.Now()
		sources, err := s.backend.RefreshProduct(ctx, p.PartNumber)
		if err != nil {
			return done, fmt.Errorf("refresh %s: %w", p.PartNumber, err)
		}
		sortSources(sources)

		s.mu.Lock()
		if s.gen == gen {
			p.Sources = sources
		}
		catalogID := s.catalogID
		s.mu.Unlock()

		if idx := search.GetService(); idx.Enabled() {
			if err := idx.IndexProduct(ctx, catalogID, p); err != nil {
				log.Printf("index %s: %v", p.PartNumber, err)
			}
		}
		if s.history != nil {
			if err := s.history.RecordRefresh(p.PartNumber, categoryID, sources, time.Since(started)); err != nil {
				log.Printf("record refresh %s: %v", p.PartNumber, err)
			}
		}
		done++
	}
	return done, nil
}

// RefreshProduct re-runs the competitor search for one product.
func (s *Service) RefreshProduct(ctx context.Context, partNumber string) ([]*catalog.Source, error) {
	started := time.Now()
	sources, err := s.backend.RefreshProduct(ctx, partNumber)
	if err != nil {
		return nil, err
	}
	sortSources(sources)
	if s.history != nil {
		if err := s.history.RecordRefresh(partNumber, 0, sources, time.Since(started)); err != nil {
			log.Printf("record refresh %s: %v", partNumber, err)
		}
	}
	return sources, nil
}

func sortSources(sources []*catalog.Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].RetailPrice < sources[j].RetailPrice
	})
}
