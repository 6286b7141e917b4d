package resolvers

import (
	"pricewatch.GO/catalog"
	gqlmodels "pricewatch.GO/graphql/models"
)

func mapCategories(tree []*catalog.Category) []*gqlmodels.Category {
	out := make([]*gqlmodels.Category, 0, len(tree))
	for _, c := range tree {
		if c == nil {
			continue
		}
		out = append(out, mapCategory(c))
	}
	return out
}

func mapCategory(c *catalog.Category) *gqlmodels.Category {
	return &gqlmodels.Category{
		ID:         int32(c.ID),
		Name:       c.Name,
		Leaf:       c.Leaf,
		Selectable: c.IsSelectable(),
		Children:   mapCategories(c.Children),
	}
}
