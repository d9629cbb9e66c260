package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/migration"
)

// ErrNothingToRevert is returned by Down when no migration has been applied.
var ErrNothingToRevert = errors.New("no migrations to revert")

// Migrator handles the execution of migrations
type Migrator struct {
	db         *gorm.DB
	migrations []*migration.Migration
	log        zerolog.Logger
}

// NewMigrator creates a Migrator over the given migrations, sorted by version.
func NewMigrator(db *gorm.DB, migrations ...*migration.Migration) *Migrator {
	m := &Migrator{
		db:  db,
		log: zerolog.Nop(),
	}
	for _, mr := range migrations {
		m.Register(mr)
	}
	return m
}

// WithLogger sets the logger used to report applied and reverted migrations.
func (m *Migrator) WithLogger(l zerolog.Logger) *Migrator {
	m.log = l
	return m
}

// Register adds a migration to the migrator
func (m *Migrator) Register(mr *migration.Migration) {
	m.migrations = append(m.migrations, mr)
	migration.SortByVersion(m.migrations)
}

func (m *Migrator) Migrations() []*migration.Migration {
	return m.migrations
}

// ensureVersionTable creates the version tracking table if it doesn't exist
func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	return m.db.WithContext(ctx).AutoMigrate(&migration.MigrationRecord{})
}

// Applied returns applied records, newest first.
func (m *Migrator) Applied(ctx context.Context) ([]migration.MigrationRecord, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var records []migration.MigrationRecord
	if err := m.db.WithContext(ctx).Order("applied_at DESC").Order("version DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return records, nil
}

// GetAppliedVersions returns a map of applied migration versions
func (m *Migrator) GetAppliedVersions(ctx context.Context) (map[string]bool, error) {
	records, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}

	versions := make(map[string]bool, len(records))
	for _, record := range records {
		versions[record.Version] = true
	}
	return versions, nil
}

// Pending returns registered migrations not yet applied, oldest first.
func (m *Migrator) Pending(ctx context.Context) ([]*migration.Migration, error) {
	applied, err := m.GetAppliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var pending []*migration.Migration
	for _, mr := range m.migrations {
		if !applied[mr.Version] {
			pending = append(pending, mr)
		}
	}
	return pending, nil
}

// Up applies all pending migrations, each in its own transaction.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := migration.Validate(m.migrations); err != nil {
		return 0, err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	for i, mr := range pending {
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := mr.Up(tx); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", mr.Name, err)
			}
			record := migration.MigrationRecord{
				Version:   mr.Version,
				Name:      mr.Name,
				AppliedAt: time.Now(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mr.Name, err)
			}
			return nil
		})
		if err != nil {
			return i, err
		}
		m.log.Info().Str("version", mr.Version).Str("name", mr.Name).Msg("applied migration")
	}
	return len(pending), nil
}

// Down reverts the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) (*migration.Migration, error) {
	records, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNothingToRevert
	}
	last := records[0]

	var target *migration.Migration
	for _, mr := range m.migrations {
		if mr.Version == last.Version {
			target = mr
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("migration for version %s is not registered", last.Version)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := target.Down(tx); err != nil {
			return fmt.Errorf("failed to revert migration %s: %w", target.Name, err)
		}
		if err := tx.Delete(&last).Error; err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info().Str("version", target.Version).Str("name", target.Name).Msg("reverted migration")
	return target, nil
}
