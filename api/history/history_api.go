package historyapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/model/repository/history"
)

func init() {
	api.RegisterModule(RegisterHistoryRoutes)
}

func RegisterHistoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/history")

	// History needs the DB; without one the routes answer 503.
	if db == nil {
		unavailable := func(c echo.Context) error {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "history store not configured"})
		}
		g.GET("/refreshes", unavailable)
		g.GET("/refreshes/:part_number", unavailable)
		g.GET("/searches", unavailable)
		return
	}
	repo := history.NewHistoryRepository(db)

	// GET /api/history/refreshes?limit=
	g.GET("/refreshes", func(c echo.Context) error {
		records, err := repo.RecentRefreshes(queryLimit(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, records)
	})

	// GET /api/history/refreshes/:part_number?limit=
	g.GET("/refreshes/:part_number", func(c echo.Context) error {
		records, err := repo.RefreshesForProduct(c.Param("part_number"), queryLimit(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, records)
	})

	// GET /api/history/searches?limit=
	g.GET("/searches", func(c echo.Context) error {
		records, err := repo.RecentSearches(queryLimit(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, records)
	})
}

func queryLimit(c echo.Context) int {
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
