// Package realtime is the live price-check endpoint: it runs the
// marketplace search for one product on request and compares the
// result against the caller's price, bypassing every cache.
package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pricewatch.GO/api"
	"pricewatch.GO/catalog"
	"pricewatch.GO/config"
	"pricewatch.GO/model/entity"
	historyRepo "pricewatch.GO/model/repository/history"
	"pricewatch.GO/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// SourceQuote is one competitor listing with its delta against the
// caller's price.
type SourceQuote struct {
	SourceName   string  `json:"source_name"`
	RetailPrice  float64 `json:"retail_price"`
	URL          string  `json:"url"`
	DeltaPercent float64 `json:"delta_percent"`
}

// getSignKey returns the shared HMAC key for signed clients from env.
func getSignKey() string {
	return config.GetEnv("API_SIGN_KEY", "")
}

// verifyClientSignature validates HMAC-SHA256 over the part number
// using constant-time comparison.
func verifyClientSignature(partNumber, signature, signKey string) bool {
	if signKey == "" || partNumber == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(signKey))
	mac.Write([]byte(partNumber))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

// RegisterRealtimeRoutes sets up the live price-check API.
func RegisterRealtimeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := dashboard.GetService(db)
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/quote?part_number=XXX&our_price=123.45
	// Runs the marketplace search now and, in parallel, pulls the last
	// recorded refresh so the caller can see how stale the old data was.
	g.GET("/quote", func(c echo.Context) error {
		start := time.Now()

		pn := c.QueryParam("part_number")
		if pn == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "part_number required"})
		}

		if signKey := getSignKey(); signKey != "" {
			sig := c.Request().Header.Get("X-Client-Sig")
			if !verifyClientSignature(pn, sig, signKey) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
			}
		}

		ourPrice := 0.0
		if v := c.QueryParam("our_price"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				ourPrice = f
			}
		}

		var (
			sources  []*catalog.Source
			previous *entity.RefreshRecord
		)

		// Parallel fetch using errgroup
		eg := new(errgroup.Group)
		eg.Go(func() error {
			var err error
			sources, err = svc.RefreshProduct(c.Request().Context(), pn)
			return err
		})
		if db != nil {
			repo := historyRepo.NewHistoryRepository(db)
			eg.Go(func() error {
				rec, err := repo.LastRefresh(pn)
				if err == nil {
					previous = rec
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}

		quotes := make([]SourceQuote, 0, len(sources))
		for _, s := range sources {
			quotes = append(quotes, SourceQuote{
				SourceName:   s.SourceName,
				RetailPrice:  s.RetailPrice,
				URL:          s.URL,
				DeltaPercent: catalog.SourceDeltaPercent(ourPrice, s.RetailPrice),
			})
		}

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))

		resp := echo.Map{
			"part_number": pn,
			"sources":     quotes,
			"duration_ms": duration,
		}
		if previous != nil {
			resp["previous_refresh_at"] = previous.CreatedAt
			resp["previous_source_cnt"] = previous.SourceCnt
		}
		return c.JSON(http.StatusOK, resp)
	})
}
