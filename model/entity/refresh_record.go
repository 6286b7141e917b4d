package entity

import (
	"time"

	"gorm.io/datatypes"
)

// RefreshRecord is one completed competitor-source refresh for a
// product. Sources holds the discovered listings as returned by the
// search service, already sorted by price.
type RefreshRecord struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement"`
	PartNumber string         `gorm:"column:part_number;type:varchar(64);not null;index"`
	CategoryID int            `gorm:"column:category_id;not null;default:0;index"`
	SourceCnt  int            `gorm:"column:source_cnt;not null;default:0"`
	Sources    datatypes.JSON `gorm:"column:sources"`
	DurationMs int64          `gorm:"column:duration_ms;not null;default:0"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime;index"`
}

func (RefreshRecord) TableName() string {
	return "refresh_record"
}
