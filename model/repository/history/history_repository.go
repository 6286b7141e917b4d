// Package history persists refresh and search events so the dashboard
// can show when a product's competitor data was last rebuilt.
package history

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"pricewatch.GO/catalog"
	"pricewatch.GO/model/entity"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Migrate creates the history tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.RefreshRecord{}, &entity.SearchRecord{})
}

// RecordRefresh stores one completed product refresh. categoryID is 0
// for single-product refreshes triggered outside a category run.
func (r *HistoryRepository) RecordRefresh(partNumber string, categoryID int, sources []*catalog.Source, took time.Duration) error {
	payload, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	rec := entity.RefreshRecord{
		PartNumber: partNumber,
		CategoryID: categoryID,
		SourceCnt:  len(sources),
		Sources:    payload,
		DurationMs: took.Milliseconds(),
	}
	return r.db.Create(&rec).Error
}

// RecordSearch stores one category search.
func (r *HistoryRepository) RecordSearch(query string, results int) error {
	return r.db.Create(&entity.SearchRecord{Query: query, Results: results}).Error
}

// RecentRefreshes returns the newest refreshes, most recent first.
func (r *HistoryRepository) RecentRefreshes(limit int) ([]entity.RefreshRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []entity.RefreshRecord
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// RefreshesForProduct returns the refresh history of one part number.
func (r *HistoryRepository) RefreshesForProduct(partNumber string, limit int) ([]entity.RefreshRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []entity.RefreshRecord
	err := r.db.Where("part_number = ?", partNumber).
		Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// LastRefresh returns the most recent refresh for a part number, or
// gorm.ErrRecordNotFound.
func (r *HistoryRepository) LastRefresh(partNumber string) (*entity.RefreshRecord, error) {
	var rec entity.RefreshRecord
	err := r.db.Where("part_number = ?", partNumber).
		Order("created_at DESC, id DESC").First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentSearches returns the newest searches, most recent first.
func (r *HistoryRepository) RecentSearches(limit int) ([]entity.SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []entity.SearchRecord
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// PruneOlderThan deletes history rows older than the given age and
// returns how many were removed.
func (r *HistoryRepository) PruneOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	var total int64
	res := r.db.Where("created_at < ?", cutoff).Delete(&entity.RefreshRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	total += res.RowsAffected
	res = r.db.Where("created_at < ?", cutoff).Delete(&entity.SearchRecord{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected
	return total, nil
}
