package database

import (
	"fmt"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"gorm.io/gorm"
)

// dataLogIndexes are created after AutoMigrate; gorm tags cannot express
// GIN or descending composite indexes.
var dataLogIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_data_logs_created_at_id ON data_logs(created_at DESC, id DESC);",
	"CREATE INDEX IF NOT EXISTS idx_data_logs_query_gin ON data_logs USING GIN (query);",
}

// AutoMigrate runs database migrations for all relational models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.DataLog{}); err != nil {
		return err
	}
	for _, stmt := range dataLogIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
