package catalog

// CollectLeafIDs returns the ids of every selectable node in depth-first
// pre-order: a node emits its id when its leaf flag is set or it has no
// children, and recursion continues into children either way. A node
// flagged leaf that nonetheless carries children therefore emits its own
// id and its descendants' leaf ids — the same recurse-always rule the
// aggregator uses.
func CollectLeafIDs(tree []*Category) []int {
	var ids []int
	for _, cat := range tree {
		if cat == nil {
			continue
		}
		if cat.IsSelectable() {
			ids = append(ids, cat.ID)
		}
		if len(cat.Children) > 0 {
			ids = append(ids, CollectLeafIDs(cat.Children)...)
		}
	}
	return ids
}

// CollectIDs returns every node id in the tree, depth-first pre-order.
// Used to request stats for the full category set in one call.
func CollectIDs(tree []*Category) []int {
	var ids []int
	for _, cat := range tree {
		if cat == nil {
			continue
		}
		ids = append(ids, cat.ID)
		if len(cat.Children) > 0 {
			ids = append(ids, CollectIDs(cat.Children)...)
		}
	}
	return ids
}
