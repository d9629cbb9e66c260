package versions

import (
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration"
)

func createListingTables() *migration.Migration {
	return &migration.Migration{
		Version:   "20250301090000",
		Name:      "create_listing_tables",
		CreatedAt: created("20250301090000"),
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&models.User{},
				&models.City{},
				&models.Property{},
				&models.PropertyImage{},
				&models.Favourite{},
			)
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(
				&models.Favourite{},
				&models.PropertyImage{},
				&models.Property{},
				&models.City{},
				&models.User{},
			)
		},
	}
}
