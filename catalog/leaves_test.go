package catalog

import (
	"reflect"
	"testing"
)

func node(id int, name string, leaf bool, children ...*Category) *Category {
	return &Category{ID: id, Name: name, Leaf: leaf, Children: children, Products: []*Product{}}
}

func TestCollectLeafIDs_Order(t *testing.T) {
	// A(B(leaf), C(D(leaf)))
	tree := []*Category{
		node(1, "A", false,
			node(2, "B", true),
			node(3, "C", false,
				node(4, "D", true),
			),
		),
	}

	got := CollectLeafIDs(tree)
	want := []int{2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectLeafIDs = %v, want %v", got, want)
	}
}

func TestCollectLeafIDs_LeafWithChildren(t *testing.T) {
	// A leaf-flagged node carrying children emits its own id and still
	// recurses into the children's leaves.
	tree := []*Category{
		node(1, "A", true,
			node(2, "B", false),
		),
	}

	got := CollectLeafIDs(tree)
	want := []int{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectLeafIDs = %v, want %v", got, want)
	}
}

func TestCollectLeafIDs_NilNodes(t *testing.T) {
	tree := []*Category{nil, node(1, "A", true), nil}
	if got := CollectLeafIDs(tree); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("CollectLeafIDs = %v, want [1]", got)
	}
}

func TestCollectIDs(t *testing.T) {
	tree := []*Category{
		node(1, "A", false,
			node(2, "B", true),
			node(3, "C", false, node(4, "D", true)),
		),
	}
	want := []int{1, 2, 3, 4}
	if got := CollectIDs(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("CollectIDs = %v, want %v", got, want)
	}
}
