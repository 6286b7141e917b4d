package catalog

// FilterByIDs prunes the tree to nodes whose id is in keep, or that
// still have at least one surviving descendant after recursive
// filtering. A surviving node's children are replaced by the filtered
// list, which may be empty. The output is built entirely from fresh
// nodes — the canonical tree obtained from the last fetch is never
// touched, so a derived filtered view can't corrupt it through aliasing.
func FilterByIDs(tree []*Category, keep map[int]struct{}) []*Category {
	out := []*Category{}
	for _, cat := range tree {
		if cat == nil {
			continue
		}
		children := FilterByIDs(cat.Children, keep)
		_, kept := keep[cat.ID]
		if !kept && len(children) == 0 {
			continue
		}
		cp := cat.clone()
		cp.Children = children
		out = append(out, cp)
	}
	return out
}

// KeepSet builds the id set for FilterByIDs from stats rows, retaining
// only categories that still have products (and, while a minimum-price
// filter is active, products matching it).
func KeepSet(stats []Stats, requireFiltered bool) map[int]struct{} {
	keep := make(map[int]struct{}, len(stats))
	for _, s := range stats {
		if requireFiltered {
			if s.FilteredCount > 0 {
				keep[s.CategoryID] = struct{}{}
			}
			continue
		}
		if s.TotalProducts > 0 {
			keep[s.CategoryID] = struct{}{}
		}
	}
	return keep
}
