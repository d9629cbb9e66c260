package versions

import (
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration"
)

func createChatTables() *migration.Migration {
	return &migration.Migration{
		Version:   "20250301090200",
		Name:      "create_chat_tables",
		CreatedAt: created("20250301090200"),
		Up: func(db *gorm.DB) error {
			if err := db.AutoMigrate(&models.Conversation{}, &models.Message{}); err != nil {
				return err
			}
			// Message listing reads the newest rows of one conversation.
			return db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at)").Error
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&models.Message{}, &models.Conversation{})
		},
	}
}
