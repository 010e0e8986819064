package database

import (
	"fmt"

	applog "github.com/yukikurage/taskflow/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the listing queries rely on
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// notification window: newest first per user
		{"notifications", "idx_notifications_user_created", "user_id, created_at"},
		// comment thread in display order
		{"comments", "idx_comments_task_created", "task_id, created_at"},
		// employee listing: manager's tasks for the manager's employees
		{"tasks", "idx_tasks_creator_assignee", "created_by_id, assigned_to_id"},
		{"profiles", "idx_profiles_manager_role", "manager_id, role"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			applog.Log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		applog.Log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate cannot express
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
