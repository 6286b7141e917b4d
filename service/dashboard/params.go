package dashboard

import (
	"pricewatch.GO/catalog"
	"pricewatch.GO/config"
)

// FilterParams is an immutable snapshot of the price-filter controls.
// Every With* method returns a new value, so a snapshot handed to an
// in-flight request can never change under it.
type FilterParams struct {
	minPrice     *float64
	exchangeRate float64
	priceTier    catalog.PriceTier
	categoryIDs  []int
}

// NewFilterParams returns the default filter state: no minimum price,
// the configured exchange rate and the lowest wholesale tier.
func NewFilterParams() FilterParams {
	rate := 80.0
	if config.AppConfig != nil {
		rate = config.AppConfig.DefaultExchangeRate
	}
	return FilterParams{
		exchangeRate: rate,
		priceTier:    catalog.TierA,
	}
}

func (p FilterParams) WithMinPrice(v float64) FilterParams {
	p.minPrice = &v
	return p
}

func (p FilterParams) WithoutMinPrice() FilterParams {
	p.minPrice = nil
	return p
}

func (p FilterParams) WithExchangeRate(rate float64) FilterParams {
	if rate > 0 {
		p.exchangeRate = rate
	}
	return p
}

func (p FilterParams) WithPriceTier(tier catalog.PriceTier) FilterParams {
	if catalog.ValidTier(tier) {
		p.priceTier = tier
	}
	return p
}

func (p FilterParams) WithCategoryIDs(ids []int) FilterParams {
	p.categoryIDs = append([]int(nil), ids...)
	return p
}

// Active reports whether a minimum-price filter should be evaluated.
func (p FilterParams) Active() bool {
	return p.minPrice != nil && len(p.categoryIDs) > 0
}

// MinPrice returns the minimum price, or nil when no filter is set.
// The pointer is a copy so callers cannot mutate the snapshot.
func (p FilterParams) MinPrice() *float64 {
	if p.minPrice == nil {
		return nil
	}
	v := *p.minPrice
	return &v
}

func (p FilterParams) ExchangeRate() float64 { return p.exchangeRate }

func (p FilterParams) PriceTier() catalog.PriceTier { return p.priceTier }

func (p FilterParams) CategoryIDs() []int {
	return append([]int(nil), p.categoryIDs...)
}
