package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/dualfetch/models"
)

// Models lists every table of the blog schema in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.PostTag{},
		&models.Comment{},
	}
}

// RunMigrations creates or updates the blog schema.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
