package dashboard

import (
	"log"
	"sync"

	"gorm.io/gorm"

	"pricewatch.GO/model/repository/history"
	"pricewatch.GO/upstream"
)

var (
	instanceOnce sync.Once
	instance     *Service
)

// GetService returns the process-wide dashboard service. The first call
// wires the upstream client and, when a DB is available, the history
// recorder. A nil db disables history.
func GetService(db *gorm.DB) *Service {
	instanceOnce.Do(func() {
		var recorder HistoryRecorder
		if db != nil {
			if err := history.Migrate(db); err != nil {
				log.Printf("history migrate: %v", err)
			} else {
				recorder = history.NewHistoryRepository(db)
			}
		}
		instance = New(upstream.New(), recorder)
	})
	return instance
}
