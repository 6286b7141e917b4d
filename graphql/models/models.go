// Package models holds the GraphQL view types. graphql-go maps Int to
// int32, so counts are int32 here even though the domain uses int.
package models

type Catalog struct {
	ID              int32
	Name            string
	CategoriesCount int32
	ProductsCount   int32
}

type Category struct {
	ID         int32
	Name       string
	Leaf       bool
	Selectable bool
	Children   []*Category
}

type CategorySearchResult struct {
	Categories []*Category
	Expand     []int32
}

type CategorySummary struct {
	ID              int32
	Name            string
	TotalProducts   int32
	WithSources     int32
	CoveragePercent int32
}

type PriceType struct {
	ID    int32
	Name  string
	Value string
}

type RefreshEntry struct {
	PartNumber string
	CategoryID int32
	SourceCnt  int32
	DurationMs int32
	CreatedAt  string
}
