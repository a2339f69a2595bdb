package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
)

// Migrate creates or updates the users, books and reviews tables, including
// the unique indexes, the rating check and the cascading book foreign key.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Book{},
		&model.Review{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, children first.
func Reset(db *gorm.DB) error {
	tables := []interface{}{
		&model.Review{},
		&model.Book{},
		&model.User{},
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
