// Package graphqlserver adapts schema arguments onto the resolvers
// package and wires the graph-gophers runtime.
package graphqlserver

import (
	"context"
	"encoding/json"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"pricewatch.GO/graphql"
	gqlmodels "pricewatch.GO/graphql/models"
	"pricewatch.GO/graphql/registry"
	"pricewatch.GO/graphql/resolvers"
	"pricewatch.GO/upstream"
)

// RootResolver is the root for graphql-go. Query resolvers are created
// per request with the catalog name from headers/variables.
type RootResolver struct {
	Client *upstream.Client
	DB     *gorm.DB
}

func (r *RootResolver) Query() *QueryResolver {
	return &QueryResolver{client: r.Client, db: r.DB}
}

// QueryResolver implements Query fields. Delegates to resolvers package.
type QueryResolver struct {
	client *upstream.Client
	db     *gorm.DB
}

func (r *QueryResolver) resolver(ctx context.Context) *resolvers.Resolver {
	return resolvers.NewResolver(r.client, r.db, graphql.CatalogFromContext(ctx))
}

func (r *QueryResolver) Catalogs(ctx context.Context) ([]*gqlmodels.Catalog, error) {
	return r.resolver(ctx).Catalogs(ctx)
}

// CategoryTreeArgs matches the categoryTree query arguments.
type CategoryTreeArgs struct {
	Catalog *string
}

func (r *QueryResolver) CategoryTree(ctx context.Context, args CategoryTreeArgs) ([]*gqlmodels.Category, error) {
	return r.resolver(ctx).CategoryTree(ctx, args.Catalog)
}

// SearchCategoriesArgs matches the searchCategories query arguments.
type SearchCategoriesArgs struct {
	Query   string
	Catalog *string
}

func (r *QueryResolver) SearchCategories(ctx context.Context, args SearchCategoriesArgs) (*gqlmodels.CategorySearchResult, error) {
	return r.resolver(ctx).SearchCategories(ctx, args.Query, args.Catalog)
}

// CategorySummaryArgs matches the categorySummary query arguments.
type CategorySummaryArgs struct {
	ID      int32
	Catalog *string
}

func (r *QueryResolver) CategorySummary(ctx context.Context, args CategorySummaryArgs) (*gqlmodels.CategorySummary, error) {
	return r.resolver(ctx).CategorySummary(ctx, int(args.ID), args.Catalog)
}

func (r *QueryResolver) PriceTypes(ctx context.Context) []*gqlmodels.PriceType {
	return r.resolver(ctx).PriceTypes(ctx)
}

// RecentRefreshesArgs matches the recentRefreshes query arguments
// (default in schema: limit=20).
type RecentRefreshesArgs struct {
	Limit int32
}

func (r *QueryResolver) RecentRefreshes(ctx context.Context, args RecentRefreshesArgs) ([]*gqlmodels.RefreshEntry, error) {
	limit := int(args.Limit)
	if limit <= 0 {
		limit = 20
	}
	return r.resolver(ctx).RecentRefreshes(ctx, limit)
}

// ExtensionArgs for _extension(name, args).
type ExtensionArgs struct {
	Name string
	Args *string
}

func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	var m map[string]interface{}
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	out, err := registry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// NewSchema parses the schema and returns a graphql-go Schema.
func NewSchema(client *upstream.Client, db *gorm.DB) (*gql.Schema, error) {
	return gql.ParseSchema(graphql.Schema(), &RootResolver{Client: client, DB: db}, gql.UseFieldResolvers())
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
