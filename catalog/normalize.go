package catalog

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Normalize converts a raw backend category payload into a uniform tree.
// All absence-defaulting happens here and nowhere else: children and
// products are never nil afterwards, so downstream tree functions can
// assume every field is present. Nil or non-object entries are skipped —
// backend responses have been observed to contain such gaps.
func Normalize(raw []interface{}) []*Category {
	out := make([]*Category, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok || m == nil {
			continue
		}
		cat, err := decodeCategory(m)
		if err != nil {
			continue
		}
		out = append(out, cat)
	}
	return out
}

// NormalizeMaps is Normalize for payloads already typed as object maps.
func NormalizeMaps(raw []map[string]interface{}) []*Category {
	entries := make([]interface{}, len(raw))
	for i, m := range raw {
		if m == nil {
			continue
		}
		entries[i] = m
	}
	return Normalize(entries)
}

func decodeCategory(m map[string]interface{}) (*Category, error) {
	var cat Category
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       numericBoolHook(),
		Result:           &cat,
		TagName:          "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	// Nested children are decoded recursively so nil gaps at any depth
	// are dropped, not errored on.
	children, _ := m["children"].([]interface{})
	products := m["products"]
	delete(m, "children")
	delete(m, "products")
	defer func() {
		m["children"] = children
		m["products"] = products
	}()

	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}

	cat.Children = Normalize(children)
	cat.Products = normalizeProducts(products)
	return &cat, nil
}

func normalizeProducts(raw interface{}) []*Product {
	entries, ok := raw.([]interface{})
	if !ok {
		return []*Product{}
	}
	out := make([]*Product, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok || m == nil {
			continue
		}
		var p Product
		cfg := &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			DecodeHook:       numericBoolHook(),
			Result:           &p,
			TagName:          "mapstructure",
		}
		dec, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			continue
		}
		if err := dec.Decode(m); err != nil {
			continue
		}
		if p.Sources == nil {
			p.Sources = []*Source{}
		}
		out = append(out, &p)
	}
	return out
}

// numericBoolHook coerces 0/1 leaf flags into bool. The backend has been
// seen emitting both JSON booleans and numeric flags.
func numericBoolHook() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.Bool {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		case float64:
			return int(v) != 0, nil
		}
		return data, nil
	}
}
