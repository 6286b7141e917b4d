package entity

import "time"

// SearchRecord is one category search a user ran against a catalog.
type SearchRecord struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Query     string    `gorm:"column:query;type:varchar(255);not null"`
	Results   int       `gorm:"column:results;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (SearchRecord) TableName() string {
	return "search_record"
}
