package catalogapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/catalog"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterCatalogRoutes)
}

func RegisterCatalogRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)

	// GET /api/catalogs – list available catalogs
	apiGroup.GET("/catalogs", func(c echo.Context) error {
		catalogs, err := svc.Catalogs(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, catalogs)
	})

	// POST /api/catalogs/select – switch the active catalog and load its tree
	apiGroup.POST("/catalogs/select", func(c echo.Context) error {
		start := time.Now()
		var body struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		tree, err := svc.SetCatalog(c.Request().Context(), body.ID, body.Name)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
		return c.JSON(http.StatusOK, echo.Map{"categories": tree})
	})

	// GET /api/categories – the visible tree with stats
	apiGroup.GET("/categories", func(c echo.Context) error {
		stats, loaded := svc.Stats()
		return c.JSON(http.StatusOK, echo.Map{
			"categories":   svc.Tree(),
			"stats":        stats,
			"stats_loaded": loaded,
		})
	})

	// GET /api/categories/search?q= – name search with auto-expand ids
	apiGroup.GET("/categories/search", func(c echo.Context) error {
		res := svc.Search(c.QueryParam("q"))
		expand := make([]int, 0, len(res.ExpandAncestors))
		for id := range res.ExpandAncestors {
			expand = append(expand, id)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"categories": res.Results,
			"expand":     expand,
		})
	})

	// GET /api/categories/:id/summary – aggregated subtree product info
	apiGroup.GET("/categories/:id/summary", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
		}
		node := catalog.FindByID(svc.Tree(), id)
		if node == nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		stats, loaded := svc.Stats()
		return c.JSON(http.StatusOK, echo.Map{
			"subtree_total": catalog.SubtreeTotal(node, stats),
			"state":         catalog.State(node, stats, loaded).String(),
			"summary":       catalog.Summarize(node),
		})
	})

	// GET /api/price-types – the fixed price tier table
	apiGroup.GET("/price-types", func(c echo.Context) error {
		return c.JSON(http.StatusOK, catalog.PriceTiers)
	})
}
