// Package testutil provides a migrated sqlite database and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/config"
	"github.com/propsnap/propsnap/internal/database"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/migration/driver"
	"github.com/propsnap/propsnap/migration/versions"
)

// NewDB returns a sqlite database in t.TempDir() with every schema version applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000",
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	_, err = driver.NewMigrator(db, versions.All()...).Up(context.Background())
	require.NoError(t, err)
	return db
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "$2a$04$placeholderplaceholderplaceholderplaceholderplaceho",
		Phone:    "+919876543210",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateCity inserts an active city.
func CreateCity(t *testing.T, db *gorm.DB, name, state string) *models.City {
	t.Helper()
	c := &models.City{Name: name, State: state, Country: "India", IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

// PropertyOption adjusts a fixture property before insert.
type PropertyOption func(*models.Property)

func WithType(pt models.PropertyType) PropertyOption {
	return func(p *models.Property) { p.Type = pt }
}

func WithListingType(lt models.ListingType) PropertyOption {
	return func(p *models.Property) { p.ListingType = lt }
}

func WithBHK(n int) PropertyOption {
	return func(p *models.Property) { p.BHK = n }
}

func WithPrice(price float64) PropertyOption {
	return func(p *models.Property) { p.Price = price }
}

func WithAvailable(available bool) PropertyOption {
	return func(p *models.Property) { p.Available = available }
}

func WithFurnished(furnished bool) PropertyOption {
	return func(p *models.Property) { p.Furnished = furnished }
}

func WithCreatedAt(ts time.Time) PropertyOption {
	return func(p *models.Property) { p.CreatedAt = ts }
}

// CreateProperty inserts an available 2 BHK apartment for rent owned by owner in city.
func CreateProperty(t *testing.T, db *gorm.DB, owner *models.User, city *models.City, address string, opts ...PropertyOption) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:       "Sunny flat on " + address,
		Description: "A bright and airy home close to the metro.",
		Price:       25000,
		Type:        models.PropertyTypeApartment,
		ListingType: models.ListingTypeRent,
		BHK:         2,
		Sqft:        950,
		Available:   true,
		Address:     address,
		Latitude:    19.07,
		Longitude:   72.87,
		CityID:      city.ID,
		ListedByID:  owner.ID,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
