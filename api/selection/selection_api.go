package selection

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/catalog"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterSelectionRoutes)
}

func RegisterSelectionRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)
	g := apiGroup.Group("/selection")

	// GET /api/selection – selected category ids in selection order
	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"ids":   svc.SelectedIDs(),
			"limit": catalog.MaxSelected,
		})
	})

	// POST /api/selection/toggle – flip one selectable category
	g.POST("/toggle", func(c echo.Context) error {
		var body struct {
			ID int `json:"id"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		notice, err := svc.Toggle(body.ID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, toggleResponse(svc, notice))
	})

	// POST /api/selection/all – select all visible leaves up to the cap
	g.POST("/all", func(c echo.Context) error {
		notice := svc.SelectAllLeaves()
		return c.JSON(http.StatusOK, toggleResponse(svc, notice))
	})

	// DELETE /api/selection – clear the selection
	g.DELETE("", func(c echo.Context) error {
		svc.ClearSelection()
		return c.JSON(http.StatusOK, echo.Map{"ids": []int{}})
	})

	// GET /api/selection/products – selected categories with products and
	// per-product price analysis under the current filter snapshot
	g.GET("/products", func(c echo.Context) error {
		cats, err := svc.SelectedProducts(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		params := svc.Params()
		out := make([]categoryProducts, 0, len(cats))
		for _, cat := range cats {
			cp := categoryProducts{
				ID:       cat.ID,
				Name:     cat.Name,
				Summary:  catalog.Summarize(cat),
				Products: make([]productView, 0, len(cat.Products)),
			}
			for _, p := range catalog.CollectProducts(cat) {
				cp.Products = append(cp.Products, productView{
					Product:  p,
					Analysis: catalog.Analyze(p, params.PriceTier(), params.ExchangeRate()),
				})
			}
			out = append(out, cp)
		}
		return c.JSON(http.StatusOK, echo.Map{"categories": out})
	})
}

type productView struct {
	*catalog.Product
	Analysis catalog.Analysis `json:"analysis"`
}

type categoryProducts struct {
	ID       int                    `json:"id"`
	Name     string                 `json:"name"`
	Summary  catalog.SubtreeSummary `json:"summary"`
	Products []productView          `json:"products"`
}

func toggleResponse(svc *dashboard.Service, notice catalog.Notice) echo.Map {
	resp := echo.Map{"ids": svc.SelectedIDs()}
	if notice != catalog.NoticeNone {
		resp["notice"] = string(notice)
	}
	return resp
}
