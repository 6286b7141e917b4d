package catalog

import "sort"

// topSourceCount caps how many competitor listings take part in the
// min/avg ranking — beyond the cheapest five the tail is noise.
const topSourceCount = 5

// Analysis is the per-product price comparison shown in the dashboard.
// OurPrice is the selected tier converted into destination currency.
type Analysis struct {
	OurPrice        float64   `json:"our_price"`
	OurPriceWithVAT float64   `json:"our_price_with_vat"`
	VATMultiplier   float64   `json:"vat_multiplier"`
	HasPrice        bool      `json:"has_price"`
	HasSources      bool      `json:"has_sources"`
	MinPrice        float64   `json:"min_price"`
	AvgPrice        float64   `json:"avg_price"`
	BestSource      *Source   `json:"best_source,omitempty"`
	TopSources      []*Source `json:"top_sources"`
	// DiffPercent is (cheapest competitor - ours) / ours * 100:
	// negative means a competitor undercuts us.
	DiffPercent float64 `json:"diff_percent"`
}

// Analyze compares a product's tier price against its competitor
// sources at the given exchange rate. A zero tier value means the tier
// is not configured for this product and yields HasPrice false.
func Analyze(p *Product, tier PriceTier, rate float64) Analysis {
	ourPrice := p.TierValue(tier) * rate
	vat := vatMultiplier(p.Tax)

	a := Analysis{
		OurPrice:        ourPrice,
		OurPriceWithVAT: ourPrice * vat,
		VATMultiplier:   vat,
		HasPrice:        p.TierValue(tier) > 0,
		TopSources:      []*Source{},
	}

	sorted := make([]*Source, 0, len(p.Sources))
	for _, s := range p.Sources {
		if s != nil && s.RetailPrice > 0 {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RetailPrice < sorted[j].RetailPrice
	})
	if len(sorted) > topSourceCount {
		sorted = sorted[:topSourceCount]
	}
	a.TopSources = sorted

	if len(sorted) == 0 {
		return a
	}
	a.HasSources = true
	a.BestSource = sorted[0]
	a.MinPrice = sorted[0].RetailPrice

	var sum float64
	for _, s := range sorted {
		sum += s.RetailPrice
	}
	a.AvgPrice = sum / float64(len(sorted))

	if ourPrice > 0 {
		a.DiffPercent = (a.MinPrice - ourPrice) / ourPrice * 100
	}
	return a
}

// SourceDeltaPercent is the per-listing delta against our price:
// positive when the listing is more expensive than us.
func SourceDeltaPercent(ourPrice, retailPrice float64) float64 {
	if ourPrice <= 0 {
		return 0
	}
	return (retailPrice - ourPrice) / ourPrice * 100
}

func vatMultiplier(tax string) float64 {
	switch tax {
	case "20%":
		return 1.2
	case "10%":
		return 1.1
	}
	return 1
}
