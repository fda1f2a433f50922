package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/models"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Session{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", TranslateError(err))
	}
	return nil
}
