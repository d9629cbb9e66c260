package versions

import (
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration"
)

func createEnquiryTables() *migration.Migration {
	return &migration.Migration{
		Version:   "20250301090100",
		Name:      "create_enquiry_tables",
		CreatedAt: created("20250301090100"),
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(&models.Enquiry{}, &models.EnquiryReply{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.EnquiryReply{}, &models.Enquiry{})
		},
	}
}
