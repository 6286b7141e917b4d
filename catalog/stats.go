package catalog

import "math"

// SubtreeTotal returns the total product count in the subtree rooted at
// cat: the node's own stat entry (0 when absent) plus the sum over all
// children. Recursion ignores the leaf flag — a leaf-with-children node
// contributes its children's counts too, matching CollectLeafIDs.
func SubtreeTotal(cat *Category, stats StatsMap) int {
	if cat == nil {
		return 0
	}
	total := stats[cat.ID].TotalProducts
	for _, child := range cat.Children {
		total += SubtreeTotal(child, stats)
	}
	return total
}

// Coverage returns the percentage of products with at least one
// competitor source, rounded to the nearest integer. 0 for an empty
// category.
func Coverage(s Stats) int {
	if s.TotalProducts == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.WithSources) / float64(s.TotalProducts)))
}

// SubtreeState is what the UI shows for a node's product count.
type SubtreeState int

const (
	// StatsLoading — stats not fetched yet, show a spinner.
	StatsLoading SubtreeState = iota
	// StatsEmpty — stats loaded, subtree holds no products.
	StatsEmpty
	// StatsPopulated — stats loaded, subtree sum is positive.
	StatsPopulated
)

func (s SubtreeState) String() string {
	switch s {
	case StatsEmpty:
		return "empty"
	case StatsPopulated:
		return "populated"
	}
	return "loading"
}

// State classifies a node for display. loaded reports whether the stats
// fetch for the current category set has completed.
func State(cat *Category, stats StatsMap, loaded bool) SubtreeState {
	if !loaded {
		return StatsLoading
	}
	if SubtreeTotal(cat, stats) == 0 {
		return StatsEmpty
	}
	return StatsPopulated
}

// CollectProducts returns every product attached anywhere in the
// subtree, depth-first, parents before children.
func CollectProducts(cat *Category) []*Product {
	if cat == nil {
		return nil
	}
	products := make([]*Product, 0, len(cat.Products))
	products = append(products, cat.Products...)
	for _, child := range cat.Children {
		products = append(products, CollectProducts(child)...)
	}
	return products
}

// SubtreeSummary aggregates competitor coverage over the products held
// in memory for a subtree (used by the products view, which has the
// full product lists and does not need the stats endpoint).
type SubtreeSummary struct {
	TotalProducts        int     `json:"total_products"`
	WithSources          int     `json:"with_sources"`
	TotalSources         int     `json:"total_sources"`
	AvgSourcesPerProduct float64 `json:"avg_sources_per_product"`
	CoveragePercent      float64 `json:"coverage_percent"`
}

// Summarize computes the subtree summary for cat.
func Summarize(cat *Category) SubtreeSummary {
	products := CollectProducts(cat)
	sum := SubtreeSummary{TotalProducts: len(products)}
	for _, p := range products {
		if len(p.Sources) > 0 {
			sum.WithSources++
			sum.TotalSources += len(p.Sources)
		}
	}
	if sum.WithSources > 0 {
		sum.AvgSourcesPerProduct = float64(sum.TotalSources) / float64(sum.WithSources)
	}
	if sum.TotalProducts > 0 {
		sum.CoveragePercent = 100 * float64(sum.WithSources) / float64(sum.TotalProducts)
	}
	return sum
}
