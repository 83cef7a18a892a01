package db

import (
	"github.com/lmt/todolist/internal/domain"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		return err
	}

	return nil
}

func createCustomIndexes(db *gorm.DB) error {
	// Status filter for dashboards querying the table directly
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_todos_status
		ON todos (status)
	`).Error; err != nil {
		return err
	}

	return nil
}
