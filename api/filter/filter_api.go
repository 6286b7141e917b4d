package filter

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/catalog"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterFilterRoutes)
}

type filterRequest struct {
	MinPrice     float64           `json:"min_price"`
	ExchangeRate float64           `json:"exchange_rate"`
	PriceTier    catalog.PriceTier `json:"price_tier"`
	CategoryIDs  []int             `json:"category_ids"`
}

func (r filterRequest) params(base dashboard.FilterParams) (dashboard.FilterParams, error) {
	if r.MinPrice <= 0 {
		return base, echo.NewHTTPError(http.StatusBadRequest, "min_price must be positive")
	}
	p := base.WithMinPrice(r.MinPrice)
	if r.ExchangeRate > 0 {
		p = p.WithExchangeRate(r.ExchangeRate)
	}
	if r.PriceTier != "" {
		if !catalog.ValidTier(r.PriceTier) {
			return base, echo.NewHTTPError(http.StatusBadRequest, "unknown price_tier")
		}
		p = p.WithPriceTier(r.PriceTier)
	}
	if len(r.CategoryIDs) > 0 {
		p = p.WithCategoryIDs(r.CategoryIDs)
	}
	return p, nil
}

func RegisterFilterRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)
	g := apiGroup.Group("/filter")

	// POST /api/filter/categories – evaluate the minimum-price filter and
	// return the pruned tree
	g.POST("/categories", func(c echo.Context) error {
		var body filterRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		p, err := body.params(svc.Params())
		if err != nil {
			return err
		}
		pruned, err := svc.ApplyFilter(c.Request().Context(), p)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		stats, loaded := svc.Stats()
		return c.JSON(http.StatusOK, echo.Map{
			"categories":   pruned,
			"stats":        stats,
			"stats_loaded": loaded,
		})
	})

	// POST /api/filter/products – the matching products themselves
	g.POST("/products", func(c echo.Context) error {
		var body filterRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		p, err := body.params(svc.Params())
		if err != nil {
			return err
		}
		if _, err := svc.ApplyFilter(c.Request().Context(), p); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		products, err := svc.FilterProducts(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"products": products})
	})

	// DELETE /api/filter – drop the filter, restore the full tree
	g.DELETE("", func(c echo.Context) error {
		svc.ClearFilter()
		return c.JSON(http.StatusOK, echo.Map{"categories": svc.Tree()})
	})

	// POST /api/filter/exchange-rate – update the currency multiplier
	g.POST("/exchange-rate", func(c echo.Context) error {
		var body struct {
			Rate float64 `json:"rate"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Rate <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rate must be positive"})
		}
		svc.SetExchangeRate(body.Rate)
		return c.JSON(http.StatusOK, echo.Map{"exchange_rate": body.Rate})
	})
}
