package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"pricewatch.GO/catalog"
	"pricewatch.GO/upstream"
)

// fakeBackend scripts upstream responses and records call order.
type fakeBackend struct {
	tree  []*catalog.Category
	stats []catalog.Stats
	rows  []upstream.CategoryFilterRow

	refreshCalls []string
	inFlight     int32
	overlapped   bool
	refreshDelay time.Duration
	beforeReturn func(partNumber string)
}

func (f *fakeBackend) Catalogs(ctx context.Context) ([]upstream.Catalog, error) {
	return []upstream.Catalog{{ID: 1, Name: "main"}}, nil
}

func (f *fakeBackend) Categories(ctx context.Context, catalogName string) ([]*catalog.Category, error) {
	return f.tree, nil
}

func (f *fakeBackend) CategoriesStats(ctx context.Context, catalogName string, ids []int) ([]catalog.Stats, error) {
	return f.stats, nil
}

func (f *fakeBackend) CategoriesWithProducts(ctx context.Context, catalogID int, ids []int) ([]*catalog.Category, error) {
	if len(ids) == 0 {
		return []*catalog.Category{}, nil
	}
	return f.tree, nil
}

func (f *fakeBackend) FilterCategoriesByPrice(ctx context.Context, q upstream.FilterQuery) ([]upstream.CategoryFilterRow, error) {
	return f.rows, nil
}

func (f *fakeBackend) FilterProductsByPrice(ctx context.Context, q upstream.FilterQuery) ([]*catalog.Product, error) {
	return nil, nil
}

func (f *fakeBackend) RefreshProduct(ctx context.Context, partNumber string) ([]*catalog.Source, error) {
	if atomic.AddInt32(&f.inFlight, 1) > 1 {
		f.overlapped = true
	}
	if f.refreshDelay > 0 {
		time.Sleep(f.refreshDelay)
	}
	f.refreshCalls = append(f.refreshCalls, partNumber)
	if f.beforeReturn != nil {
		f.beforeReturn(partNumber)
	}
	atomic.AddInt32(&f.inFlight, -1)
	return []*catalog.Source{{ID: 1, RetailPrice: 100, SourceName: "shop"}}, nil
}

func refreshTree() []*catalog.Category {
	return []*catalog.Category{
		{ID: 1, Name: "Cables", Children: []*catalog.Category{
			{ID: 2, Name: "USB", Leaf: true, Products: []*catalog.Product{
				{ID: 10, PartNumber: "PN-1"},
				{ID: 11, PartNumber: "PN-2"},
			}},
			{ID: 3, Name: "HDMI", Leaf: true, Products: []*catalog.Product{
				{ID: 12, PartNumber: "PN-3"},
			}},
		}},
	}
}

func newService(t *testing.T, f *fakeBackend) *Service {
	t.Helper()
	s := New(f, nil)
	if _, err := s.SetCatalog(context.Background(), 1, "main"); err != nil {
		t.Fatalf("SetCatalog: %v", err)
	}
	return s
}

func TestRefreshCategorySequentialInOrder(t *testing.T) {
	f := &fakeBackend{tree: refreshTree(), refreshDelay: time.Millisecond}
	s := newService(t, f)

	n, err := s.RefreshCategory(context.Background(), 1)
	if err != nil {
		t.Fatalf("RefreshCategory: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 products refreshed, got %d", n)
	}
	want := []string{"PN-1", "PN-2", "PN-3"}
	if len(f.refreshCalls) != len(want) {
		t.Fatalf("expected %d backend calls, got %d", len(want), len(f.refreshCalls))
	}
	for i, pn := range want {
		if f.refreshCalls[i] != pn {
			t.Fatalf("call %d: expected %s, got %s", i, pn, f.refreshCalls[i])
		}
	}
	if f.overlapped {
		t.Fatal("refresh calls overlapped; each must finish before the next starts")
	}
}

func TestRefreshCategoryUpdatesSources(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)

	if _, err := s.RefreshCategory(context.Background(), 2); err != nil {
		t.Fatalf("RefreshCategory: %v", err)
	}
	node := catalog.FindByID(s.Tree(), 2)
	for _, p := range node.Products {
		if len(p.Sources) != 1 {
			t.Fatalf("product %s: sources not applied", p.PartNumber)
		}
	}
	// sibling untouched
	other := catalog.FindByID(s.Tree(), 3)
	if len(other.Products[0].Sources) != 0 {
		t.Fatal("refresh leaked into a sibling category")
	}
}

func TestRefreshCategoryStopsOnCatalogSwitch(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	var s *Service
	f.beforeReturn = func(pn string) {
		if pn == "PN-1" {
			// switch catalogs while the first refresh is in flight
			if _, err := s.SetCatalog(context.Background(), 2, "other"); err != nil {
				t.Errorf("SetCatalog: %v", err)
			}
		}
	}
	s = newService(t, f)

	n, err := s.RefreshCategory(context.Background(), 1)
	if err != nil {
		t.Fatalf("RefreshCategory: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected refresh to stop after the in-flight product, got %d", n)
	}
}

func TestRefreshCategoryRejectsConcurrentRun(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)

	release := make(chan struct{})
	f.beforeReturn = func(string) { <-release }
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RefreshCategory(context.Background(), 1)
	}()
	for !s.Refreshing(1) {
		time.Sleep(time.Millisecond)
	}
	if _, err := s.RefreshCategory(context.Background(), 1); err == nil {
		t.Fatal("expected second concurrent refresh to be rejected")
	}
	close(release)
	<-done
	if s.Refreshing(1) {
		t.Fatal("refreshing marker not cleared")
	}
}

func TestSetCatalogResetsSelectionAndFilter(t *testing.T) {
	f := &fakeBackend{
		tree: refreshTree(),
		rows: []upstream.CategoryFilterRow{{CategoryID: 2, ProductsCount: 1, WithSources: 1}},
	}
	s := newService(t, f)

	if _, err := s.Toggle(2); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	p := s.Params().WithMinPrice(500).WithCategoryIDs([]int{2})
	if _, err := s.ApplyFilter(context.Background(), p); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if s.Params().MinPrice() == nil {
		t.Fatal("filter did not install")
	}

	if _, err := s.SetCatalog(context.Background(), 2, "other"); err != nil {
		t.Fatalf("SetCatalog: %v", err)
	}
	if len(s.SelectedIDs()) != 0 {
		t.Fatal("selection must reset on catalog switch")
	}
	if s.Params().MinPrice() != nil {
		t.Fatal("filter must reset on catalog switch")
	}
}

func TestClearSelectionDropsFilter(t *testing.T) {
	f := &fakeBackend{
		tree: refreshTree(),
		rows: []upstream.CategoryFilterRow{{CategoryID: 2, ProductsCount: 1, WithSources: 1}},
	}
	s := newService(t, f)
	full := s.Tree()
	childCount := len(full[0].Children)

	if _, err := s.Toggle(2); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	p := s.Params().WithMinPrice(1000).WithCategoryIDs([]int{2})
	if _, err := s.ApplyFilter(context.Background(), p); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}

	s.ClearSelection()

	if len(s.SelectedIDs()) != 0 {
		t.Fatal("selection survived ClearSelection")
	}
	if got := s.Params().MinPrice(); got != nil {
		t.Fatalf("min-price threshold survived ClearSelection: %v", *got)
	}
	if got := s.Tree(); len(got[0].Children) != childCount {
		t.Fatal("filtered view survived ClearSelection")
	}
}

func TestSetCatalogKeepsExchangeRate(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)

	s.SetExchangeRate(95)
	if _, err := s.SetCatalog(context.Background(), 2, "other"); err != nil {
		t.Fatalf("SetCatalog: %v", err)
	}
	if got := s.Params().ExchangeRate(); got != 95 {
		t.Fatalf("exchange rate reset on catalog switch: %v", got)
	}
}

func TestApplyFilterPrunesWithoutMutatingTree(t *testing.T) {
	f := &fakeBackend{
		tree: refreshTree(),
		rows: []upstream.CategoryFilterRow{{CategoryID: 2, ProductsCount: 2, WithSources: 1}},
	}
	s := newService(t, f)
	full := s.Tree()
	childCount := len(full[0].Children)

	p := s.Params().WithMinPrice(500).WithCategoryIDs([]int{2, 3})
	pruned, err := s.ApplyFilter(context.Background(), p)
	if err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	if len(pruned) != 1 || len(pruned[0].Children) != 1 || pruned[0].Children[0].ID != 2 {
		t.Fatalf("unexpected pruned tree: %+v", pruned)
	}
	if len(full[0].Children) != childCount {
		t.Fatal("filter mutated the canonical tree")
	}

	s.ClearFilter()
	if got := s.Tree(); len(got[0].Children) != childCount {
		t.Fatal("full tree not restored after ClearFilter")
	}
}

func TestApplyFilterFallsBackToSelection(t *testing.T) {
	f := &fakeBackend{
		tree: refreshTree(),
		rows: []upstream.CategoryFilterRow{{CategoryID: 3, ProductsCount: 1, WithSources: 0}},
	}
	s := newService(t, f)
	if _, err := s.Toggle(3); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := s.ApplyFilter(context.Background(), s.Params().WithMinPrice(100)); err != nil {
		t.Fatalf("ApplyFilter with selection fallback: %v", err)
	}
	if got := s.Params().CategoryIDs(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected selection ids in params, got %v", got)
	}
}

func TestApplyFilterRequiresSelection(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)
	if _, err := s.ApplyFilter(context.Background(), s.Params().WithMinPrice(100)); err == nil {
		t.Fatal("expected error with empty selection")
	}
}

func TestToggleRejectsNonLeaf(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)
	if _, err := s.Toggle(1); err == nil {
		t.Fatal("expected non-selectable node to be rejected")
	}
	if _, err := s.Toggle(99); err == nil {
		t.Fatal("expected unknown id to be rejected")
	}
}

func TestSelectAllLeaves(t *testing.T) {
	f := &fakeBackend{tree: refreshTree()}
	s := newService(t, f)
	notice := s.SelectAllLeaves()
	if notice != catalog.NoticeNone {
		t.Fatalf("unexpected notice %q", notice)
	}
	if got := s.SelectedIDs(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestStatsLoadedOnCatalogSwitch(t *testing.T) {
	f := &fakeBackend{
		tree:  refreshTree(),
		stats: []catalog.Stats{{CategoryID: 2, TotalProducts: 2, WithSources: 1}},
	}
	s := newService(t, f)
	stats, loaded := s.Stats()
	if !loaded {
		t.Fatal("stats should be loaded after SetCatalog")
	}
	if stats[2].TotalProducts != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
