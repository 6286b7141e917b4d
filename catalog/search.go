package catalog

import "strings"

// SearchResult is a pruned tree containing only the paths to matching
// nodes, plus the ids of every strict ancestor of a match so the UI can
// auto-expand down to the hits.
type SearchResult struct {
	Results         []*Category
	ExpandAncestors map[int]struct{}
}

// Search matches query case-insensitively against category names at
// every depth. For each match the whole root-to-match path is merged
// into the result; ancestors are created once and shared between
// matches, sibling subtrees without matches are left out. An empty or
// whitespace-only query returns the tree unchanged. The input tree is
// never mutated and shares no node identity with the result.
func Search(tree []*Category, query string) SearchResult {
	q := strings.TrimSpace(query)
	if q == "" {
		return SearchResult{Results: tree, ExpandAncestors: map[int]struct{}{}}
	}
	needle := strings.ToLower(q)

	res := SearchResult{
		Results:         []*Category{},
		ExpandAncestors: make(map[int]struct{}),
	}

	var walk func(cats []*Category, path []*Category)
	walk = func(cats []*Category, path []*Category) {
		for _, cat := range cats {
			if cat == nil {
				continue
			}
			current := make([]*Category, 0, len(path)+1)
			current = append(current, path...)
			current = append(current, cat)

			if strings.Contains(strings.ToLower(cat.Name), needle) {
				for _, ancestor := range current[:len(current)-1] {
					res.ExpandAncestors[ancestor.ID] = struct{}{}
				}
				mergePath(&res.Results, current)
			}

			if len(cat.Children) > 0 {
				walk(cat.Children, current)
			}
		}
	}
	walk(tree, nil)

	return res
}

// mergePath grafts one root-to-match path onto the result forest,
// reusing nodes already created for earlier matches.
func mergePath(level *[]*Category, path []*Category) {
	for _, node := range path {
		existing := findByID(*level, node.ID)
		if existing == nil {
			existing = node.clone()
			*level = append(*level, existing)
		}
		level = &existing.Children
	}
}

func findByID(cats []*Category, id int) *Category {
	for _, c := range cats {
		if c.ID == id {
			return c
		}
	}
	return nil
}
