// Package resolvers implements the GraphQL queries on top of the
// upstream client and the history store.
package resolvers

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pricewatch.GO/catalog"
	gqlmodels "pricewatch.GO/graphql/models"
	"pricewatch.GO/model/repository/history"
	"pricewatch.GO/upstream"
)

// Backend is the upstream surface the resolvers need.
type Backend interface {
	Catalogs(ctx context.Context) ([]upstream.Catalog, error)
	Categories(ctx context.Context, catalogName string) ([]*catalog.Category, error)
	CategoriesStats(ctx context.Context, catalogName string, ids []int) ([]catalog.Stats, error)
}

type Resolver struct {
	client  Backend
	catalog string
	db      *gorm.DB
}

// NewResolver builds a resolver bound to the request's catalog name.
func NewResolver(client Backend, db *gorm.DB, catalogName string) *Resolver {
	return &Resolver{client: client, db: db, catalog: catalogName}
}

// catalogName picks the query arg over the request-level catalog.
func (r *Resolver) catalogName(arg *string) (string, error) {
	if arg != nil && *arg != "" {
		return *arg, nil
	}
	if r.catalog != "" {
		return r.catalog, nil
	}
	return "", fmt.Errorf("catalog is required (argument, Catalog header or __Catalog variable)")
}

func (r *Resolver) Catalogs(ctx context.Context) ([]*gqlmodels.Catalog, error) {
	catalogs, err := r.client.Catalogs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Catalog, 0, len(catalogs))
	for _, c := range catalogs {
		out = append(out, &gqlmodels.Catalog{
			ID:              int32(c.ID),
			Name:            c.Name,
			CategoriesCount: int32(c.CategoriesCount),
			ProductsCount:   int32(c.ProductsCount),
		})
	}
	return out, nil
}

func (r *Resolver) CategoryTree(ctx context.Context, catalogArg *string) ([]*gqlmodels.Category, error) {
	name, err := r.catalogName(catalogArg)
	if err != nil {
		return nil, err
	}
	tree, err := r.client.Categories(ctx, name)
	if err != nil {
		return nil, err
	}
	return mapCategories(tree), nil
}

func (r *Resolver) SearchCategories(ctx context.Context, query string, catalogArg *string) (*gqlmodels.CategorySearchResult, error) {
	name, err := r.catalogName(catalogArg)
	if err != nil {
		return nil, err
	}
	tree, err := r.client.Categories(ctx, name)
	if err != nil {
		return nil, err
	}
	res := catalog.Search(tree, query)
	expand := make([]int32, 0, len(res.ExpandAncestors))
	for id := range res.ExpandAncestors {
		expand = append(expand, int32(id))
	}
	return &gqlmodels.CategorySearchResult{
		Categories: mapCategories(res.Results),
		Expand:     expand,
	}, nil
}

func (r *Resolver) CategorySummary(ctx context.Context, id int, catalogArg *string) (*gqlmodels.CategorySummary, error) {
	name, err := r.catalogName(catalogArg)
	if err != nil {
		return nil, err
	}
	tree, err := r.client.Categories(ctx, name)
	if err != nil {
		return nil, err
	}
	node := catalog.FindByID(tree, id)
	if node == nil {
		return nil, nil
	}
	stats, err := r.client.CategoriesStats(ctx, name, catalog.CollectIDs([]*catalog.Category{node}))
	if err != nil {
		return nil, err
	}
	agg := catalog.Stats{CategoryID: id}
	for _, st := range stats {
		agg.TotalProducts += st.TotalProducts
		agg.WithSources += st.WithSources
	}
	return &gqlmodels.CategorySummary{
		ID:              int32(id),
		Name:            node.Name,
		TotalProducts:   int32(agg.TotalProducts),
		WithSources:     int32(agg.WithSources),
		CoveragePercent: int32(catalog.Coverage(agg)),
	}, nil
}

func (r *Resolver) PriceTypes(ctx context.Context) []*gqlmodels.PriceType {
	out := make([]*gqlmodels.PriceType, 0, len(catalog.PriceTiers))
	for _, tier := range catalog.PriceTiers {
		out = append(out, &gqlmodels.PriceType{
			ID:    int32(tier.ID),
			Name:  tier.Name,
			Value: string(tier.Value),
		})
	}
	return out
}

func (r *Resolver) RecentRefreshes(ctx context.Context, limit int) ([]*gqlmodels.RefreshEntry, error) {
	if r.db == nil {
		return []*gqlmodels.RefreshEntry{}, nil
	}
	records, err := history.NewHistoryRepository(r.db).RecentRefreshes(limit)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.RefreshEntry, 0, len(records))
	for _, rec := range records {
		out = append(out, &gqlmodels.RefreshEntry{
			PartNumber: rec.PartNumber,
			CategoryID: int32(rec.CategoryID),
			SourceCnt:  int32(rec.SourceCnt),
			DurationMs: int32(rec.DurationMs),
			CreatedAt:  rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, nil
}
