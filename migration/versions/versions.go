// Package versions registers the marketplace schema migrations.
package versions

import (
	"time"

	"github.com/propsnap/propsnap/migration"
)

func init() {
	for _, m := range All() {
		migration.RegisterMigration(m)
	}
}

// All returns the schema migrations in version order.
func All() []*migration.Migration {
	return []*migration.Migration{
		createListingTables(),
		createEnquiryTables(),
		createChatTables(),
	}
}

func created(s string) time.Time {
	t, _ := time.Parse("20060102150405", s)
	return t
}
