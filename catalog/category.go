package catalog

// Category is one node of a catalog's taxonomy tree. Children keep the
// order the backend returned them in. A node with Leaf set is directly
// selectable for price filtering and is never expanded by the UI, even
// when the backend also ships children for it.
type Category struct {
	ID       int         `json:"id" mapstructure:"id"`
	Name     string      `json:"name" mapstructure:"name"`
	ParentID *int        `json:"parent_id" mapstructure:"parent_id"`
	Leaf     bool        `json:"leaf" mapstructure:"leaf"`
	Children []*Category `json:"children" mapstructure:"children"`
	Products []*Product  `json:"products" mapstructure:"products"`
}

// IsSelectable reports whether the node is a leaf for filtering purposes:
// explicit leaf flag, or no children present.
func (c *Category) IsSelectable() bool {
	return c.Leaf || len(c.Children) == 0
}

// clone returns a copy of c with a detached (empty) children slice.
// Derived trees must never share node identity with the canonical tree.
func (c *Category) clone() *Category {
	cp := *c
	cp.Children = []*Category{}
	return &cp
}

// FindByID returns the first node with the given id in pre-order, or
// nil when the forest does not contain it.
func FindByID(tree []*Category, id int) *Category {
	for _, c := range tree {
		if c == nil {
			continue
		}
		if c.ID == id {
			return c
		}
		if found := FindByID(c.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Product is one sellable item. Tier prices are in source currency;
// a zero tier value means "no price configured", not a free product.
type Product struct {
	ID           int       `json:"id" mapstructure:"id"`
	SupplierID   int       `json:"supplier_id" mapstructure:"supplier_id"`
	PartNumber   string    `json:"part_number" mapstructure:"part_number"`
	Name         string    `json:"name" mapstructure:"name"`
	Manufacturer string    `json:"manufacturer" mapstructure:"manufacturer"`
	Guarantee    string    `json:"guarantee" mapstructure:"guarantee"`
	Tax          string    `json:"tax" mapstructure:"tax"`
	CategoryID   int       `json:"category_id" mapstructure:"category_id"`
	Discontinued bool      `json:"discontinued" mapstructure:"discontinued"`
	BasePrice    float64   `json:"base_price" mapstructure:"base_price"`
	PriceN       float64   `json:"price_n" mapstructure:"price_n"`
	PriceF       float64   `json:"price_f" mapstructure:"price_f"`
	PriceE       float64   `json:"price_e" mapstructure:"price_e"`
	PriceD       float64   `json:"price_d" mapstructure:"price_d"`
	PriceC       float64   `json:"price_c" mapstructure:"price_c"`
	PriceB       float64   `json:"price_b" mapstructure:"price_b"`
	PriceA       float64   `json:"price_a" mapstructure:"price_a"`
	RRC          float64   `json:"rrc" mapstructure:"rrc"`
	Sources      []*Source `json:"sources" mapstructure:"sources"`
}

// Source is one competitor marketplace listing discovered for a product.
// RetailPrice is in destination currency. The backend gives no ordering
// guarantee; callers sort ascending by price when ranking.
type Source struct {
	ID          int     `json:"id" mapstructure:"id"`
	RetailPrice float64 `json:"retail_price" mapstructure:"retail_price"`
	SourceName  string  `json:"source_name" mapstructure:"source_name"`
	URL         string  `json:"url" mapstructure:"url"`
}

// PriceTier identifies one of the seven parallel price fields.
type PriceTier string

const (
	TierN PriceTier = "price_n"
	TierF PriceTier = "price_f"
	TierE PriceTier = "price_e"
	TierD PriceTier = "price_d"
	TierC PriceTier = "price_c"
	TierB PriceTier = "price_b"
	TierA PriceTier = "price_a"
)

// TierInfo describes a selectable price tier for the UI.
type TierInfo struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Value PriceTier `json:"value"`
}

// PriceTiers is the fixed tier table, in the order the UI presents them.
var PriceTiers = []TierInfo{
	{1, "Tier N", TierN},
	{2, "Tier F", TierF},
	{3, "Tier E", TierE},
	{4, "Tier D", TierD},
	{5, "Tier C", TierC},
	{6, "Tier B", TierB},
	{7, "Tier A", TierA},
}

// TierValue returns the product's price for the given tier, 0 if the
// tier is unknown or not configured.
func (p *Product) TierValue(tier PriceTier) float64 {
	switch tier {
	case TierN:
		return p.PriceN
	case TierF:
		return p.PriceF
	case TierE:
		return p.PriceE
	case TierD:
		return p.PriceD
	case TierC:
		return p.PriceC
	case TierB:
		return p.PriceB
	case TierA:
		return p.PriceA
	}
	return 0
}

// ValidTier reports whether t names a known price tier.
func ValidTier(t PriceTier) bool {
	for _, info := range PriceTiers {
		if info.Value == t {
			return true
		}
	}
	return false
}

// Stats holds aggregate counts for one category id, as returned by the
// stats and price-filter endpoints. Never persisted client-side.
type Stats struct {
	CategoryID    int `json:"category_id" mapstructure:"category_id"`
	TotalProducts int `json:"total_products" mapstructure:"total_products"`
	WithSources   int `json:"with_sources" mapstructure:"with_sources"`
	// FilteredCount is only meaningful while a minimum-price filter is active.
	FilteredCount int `json:"filtered_count,omitempty" mapstructure:"filtered_count"`
}

// StatsMap indexes Stats by category id.
type StatsMap map[int]Stats
