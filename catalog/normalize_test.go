package catalog

import (
	"encoding/json"
	"testing"
)

func rawTree(t *testing.T, payload string) []interface{} {
	t.Helper()
	var raw []interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return raw
}

func TestNormalize_DefaultsAbsentFields(t *testing.T) {
	raw := rawTree(t, `[
		{"id": 1, "name": "Root", "parent_id": null, "leaf": false,
		 "children": [{"id": 2, "name": "Child", "parent_id": 1, "leaf": true}]}
	]`)

	out := Normalize(raw)
	if len(out) != 1 {
		t.Fatalf("got %d roots, want 1", len(out))
	}
	root := out[0]
	if root.ID != 1 || root.Name != "Root" || root.ParentID != nil {
		t.Errorf("root = %+v", root)
	}
	if root.Products == nil || len(root.Products) != 0 {
		t.Error("absent products must default to an empty slice")
	}
	child := root.Children[0]
	if child.Children == nil || len(child.Children) != 0 {
		t.Error("absent children must default to an empty slice")
	}
	if !child.Leaf || child.ParentID == nil || *child.ParentID != 1 {
		t.Errorf("child = %+v", child)
	}
}

func TestNormalize_SkipsNilGaps(t *testing.T) {
	raw := rawTree(t, `[
		null,
		{"id": 1, "name": "A", "leaf": true, "children": [null, {"id": 2, "name": "B", "leaf": true}]},
		null
	]`)

	out := Normalize(raw)
	if len(out) != 1 {
		t.Fatalf("got %d roots, want the null gaps skipped", len(out))
	}
	if len(out[0].Children) != 1 || out[0].Children[0].ID != 2 {
		t.Errorf("nested gap not skipped: %+v", out[0].Children)
	}
}

func TestNormalize_WeaklyTypedFlags(t *testing.T) {
	raw := rawTree(t, `[
		{"id": "7", "name": "A", "leaf": 1},
		{"id": 8, "name": "B", "leaf": "false"}
	]`)

	out := Normalize(raw)
	if len(out) != 2 {
		t.Fatalf("got %d nodes", len(out))
	}
	if out[0].ID != 7 || !out[0].Leaf {
		t.Errorf("numeric/string coercion failed: %+v", out[0])
	}
	if out[1].Leaf {
		t.Errorf("string false coerced wrong: %+v", out[1])
	}
}

func TestNormalize_Products(t *testing.T) {
	raw := rawTree(t, `[
		{"id": 1, "name": "Cables", "leaf": true, "products": [
			{"id": 10, "part_number": "PN-1", "name": "USB Cable", "price_a": 4.5,
			 "sources": [{"id": 1, "retail_price": 390, "source_name": "shop", "url": "https://x"}]},
			null,
			{"id": 11, "part_number": "PN-2", "name": "HDMI Cable"}
		]}
	]`)

	out := Normalize(raw)
	products := out[0].Products
	if len(products) != 2 {
		t.Fatalf("got %d products, want gap skipped", len(products))
	}
	if products[0].PartNumber != "PN-1" || products[0].PriceA != 4.5 {
		t.Errorf("product = %+v", products[0])
	}
	if len(products[0].Sources) != 1 || products[0].Sources[0].RetailPrice != 390 {
		t.Errorf("sources = %+v", products[0].Sources)
	}
	if products[1].Sources == nil {
		t.Error("absent sources must default to an empty slice")
	}
}

func TestNormalize_RoundTripShape(t *testing.T) {
	payload := `[
		{"id": 1, "name": "Root", "parent_id": null, "leaf": false, "children": [
			{"id": 2, "name": "L", "parent_id": 1, "leaf": true, "children": [], "products": []}
		], "products": []}
	]`
	out := Normalize(rawTree(t, payload))

	// Structural identity: same ids in same order, no extra or dropped nodes.
	ids := CollectIDs(out)
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("CollectIDs = %v, want [1 2]", ids)
	}
}
