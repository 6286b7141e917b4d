package refresh

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterRefreshRoutes)
}

func RegisterRefreshRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)
	g := apiGroup.Group("/refresh")

	// POST /api/refresh/product/:part_number – synchronous single refresh
	g.POST("/product/:part_number", func(c echo.Context) error {
		pn := c.Param("part_number")
		if pn == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "part_number is required"})
		}
		start := time.Now()
		sources, err := svc.RefreshProduct(c.Request().Context(), pn)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"part_number": pn,
			"sources":     sources,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})

	// POST /api/refresh/category/:id – kick off a category refresh. The
	// run walks every product in the subtree one by one, so it is started
	// in the background and polled via the status route.
	g.POST("/category/:id", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
		}
		if svc.Refreshing(id) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "refresh already running"})
		}
		go func() {
			n, err := svc.RefreshCategory(context.Background(), id)
			if err != nil {
				log.Printf("category %d refresh: %v (after %d products)", id, err, n)
				return
			}
			log.Printf("category %d refresh: %d products", id, n)
		}()
		return c.JSON(http.StatusAccepted, echo.Map{"category_id": id, "status": "started"})
	})

	// GET /api/refresh/category/:id/status
	g.GET("/category/:id/status", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"category_id": id,
			"refreshing":  svc.Refreshing(id),
		})
	})
}
