// Package jobs holds the scheduled background tasks. They register
// themselves through cron.Register, same as custom extensions; the
// scheduler picks them up when any entrypoint imports this package.
package jobs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"pricewatch.GO/catalog"
	"pricewatch.GO/config"
	"pricewatch.GO/cron"
	"pricewatch.GO/model/repository/history"
	"pricewatch.GO/upstream"
)

func init() {
	cron.Register("competitorrefreshjob", "0 * * * *", CompetitorRefreshJob)
	cron.Register("historyprunejob", "30 3 * * *", HistoryPruneJob)
}

// CompetitorRefreshJob walks every catalog and re-runs the competitor
// search for products that have no sources yet, one product at a time.
// The per-run batch keeps one slow marketplace from starving the hour.
// Pass a catalog name as the first arg to restrict the run.
func CompetitorRefreshJob(args ...string) {
	ctx := context.Background()
	client := upstream.New()
	limit := envInt("COMPETITOR_REFRESH_BATCH", 20)

	catalogs, err := client.Catalogs(ctx)
	if err != nil {
		log.Printf("competitor refresh: list catalogs: %v", err)
		return
	}

	refreshed := 0
	for _, c := range catalogs {
		if len(args) > 0 && args[0] != "" && args[0] != c.Name {
			continue
		}
		tree, err := client.Categories(ctx, c.Name)
		if err != nil {
			log.Printf("competitor refresh: catalog %s: %v", c.Name, err)
			continue
		}
		leaves := catalog.CollectLeafIDs(tree)
		withProducts, err := client.CategoriesWithProducts(ctx, c.ID, leaves)
		if err != nil {
			log.Printf("competitor refresh: catalog %s products: %v", c.Name, err)
			continue
		}
		for _, node := range withProducts {
			for _, p := range catalog.CollectProducts(node) {
				if refreshed >= limit {
					log.Printf("competitor refresh: batch limit %d reached, %d products refreshed", limit, refreshed)
					return
				}
				if len(p.Sources) > 0 || p.Discontinued || p.PartNumber == "" {
					continue
				}
				if _, err := client.RefreshProduct(ctx, p.PartNumber); err != nil {
					log.Printf("competitor refresh: %s: %v", p.PartNumber, err)
					continue
				}
				refreshed++
			}
		}
		client.InvalidateCatalog(c.Name)
	}
	log.Printf("competitor refresh: done, %d products refreshed", refreshed)
}

// HistoryPruneJob deletes refresh and search history past the retention
// window (HISTORY_RETENTION_DAYS, default 90).
func HistoryPruneJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("history prune: open db: %v", err)
		return
	}
	days := envInt("HISTORY_RETENTION_DAYS", 90)
	n, err := history.NewHistoryRepository(db).PruneOlderThan(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		log.Printf("history prune: %v", err)
		return
	}
	log.Printf("history prune: removed %d rows older than %d days", n, days)
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
