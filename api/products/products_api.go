package products

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/search"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)
	g := apiGroup.Group("/products")

	// GET /api/products/search?q=&page_size=&page= – full-text search over
	// the indexed products of the active catalog
	g.GET("/search", func(c echo.Context) error {
		q := c.QueryParam("q")
		if q == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
		}
		idx := search.GetService()
		if !idx.Enabled() {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "product index not configured"})
		}
		catalogID, _ := svc.Catalog()
		res, err := idx.Search(c.Request().Context(), catalogID, q, intParam(c, "page_size"), intParam(c, "page"))
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"hits":        res.Hits,
			"total_count": res.TotalCount,
			"total_pages": res.TotalPages,
		})
	})
}

func intParam(c echo.Context, name string) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
