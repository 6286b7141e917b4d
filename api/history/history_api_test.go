package historyapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pricewatch.GO/catalog"
	"pricewatch.GO/model/repository/history"
)

func setup(t *testing.T) (*echo.Echo, *history.HistoryRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := history.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := echo.New()
	RegisterHistoryRoutes(e.Group("/api"), db)
	return e, history.NewHistoryRepository(db)
}

func get(t *testing.T, e *echo.Echo, path string) (*httptest.ResponseRecorder, []map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var payload []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

func TestRecentRefreshes(t *testing.T) {
	e, repo := setup(t)
	sources := []*catalog.Source{{ID: 1, RetailPrice: 500, SourceName: "shop-a"}}
	if err := repo.RecordRefresh("PN-1", 2, sources, 800*time.Millisecond); err != nil {
		t.Fatalf("RecordRefresh: %v", err)
	}

	rec, payload := get(t, e, "/api/history/refreshes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(payload) != 1 || payload[0]["PartNumber"] != "PN-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestRefreshesForProductLimit(t *testing.T) {
	e, repo := setup(t)
	for i := 0; i < 5; i++ {
		repo.RecordRefresh("PN-1", 0, nil, 0)
	}
	rec, payload := get(t, e, "/api/history/refreshes/PN-1?limit=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(payload) != 3 {
		t.Fatalf("limit ignored, got %d rows", len(payload))
	}
}

func TestSearches(t *testing.T) {
	e, repo := setup(t)
	repo.RecordSearch("cable", 7)
	rec, payload := get(t, e, "/api/history/searches")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(payload) != 1 || payload[0]["Query"] != "cable" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestWithoutDB(t *testing.T) {
	e := echo.New()
	RegisterHistoryRoutes(e.Group("/api"), nil)
	rec, _ := get(t, e, "/api/history/refreshes")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a db, got %d", rec.Code)
	}
}
