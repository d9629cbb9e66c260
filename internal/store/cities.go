package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/search"
)

// CityRepo persists cities and computes city facets.
type CityRepo struct {
	db *gorm.DB
}

// NewCityRepo returns a CityRepo over db.
func NewCityRepo(db *gorm.DB) *CityRepo {
	return &CityRepo{db: db}
}

// FindOrCreate returns the city for (name, state), inserting it if needed.
// The insert is ON CONFLICT DO NOTHING against the (name, state) unique index,
// so concurrent callers converge on one row.
func (r *CityRepo) FindOrCreate(ctx context.Context, name, state, country string) (*models.City, error) {
	db := r.db.WithContext(ctx)

	city := &models.City{Name: name, State: state, Country: country, IsActive: true}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "state"}},
		DoNothing: true,
	}).Create(city)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to upsert city: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return city, nil
	}

	var existing models.City
	if err := db.Where("name = ? AND state = ?", name, state).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load city: %w", translate(err))
	}
	return &existing, nil
}

// CityFacet is a city with the number of listings matching a facet filter.
type CityFacet struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	State         string `json:"state"`
	PropertyCount int64  `json:"propertyCount"`
}

// Facets returns active cities with at least one listing matching f, with
// per-city counts, ordered by name. Eligibility and count share one predicate.
func (r *CityRepo) Facets(ctx context.Context, f search.FacetFilter) ([]CityFacet, error) {
	facets := make([]CityFacet, 0)
	err := r.db.WithContext(ctx).
		Table("cities").
		Select("cities.id AS id, cities.name AS name, cities.state AS state, COUNT(properties.id) AS property_count").
		Joins("JOIN properties ON properties.city_id = cities.id").
		Where("cities.is_active = ?", true).
		Scopes(search.FacetPredicate(f)).
		Group("cities.id, cities.name, cities.state").
		Order("cities.name ASC").
		Scan(&facets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cities: %w", err)
	}
	return facets, nil
}

// SampleMatching returns up to limit of the newest listings matching f in
// active cities.
func (r *CityRepo) SampleMatching(ctx context.Context, f search.FacetFilter, limit int) ([]models.Property, error) {
	sample := make([]models.Property, 0, limit)
	err := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Joins("JOIN cities ON cities.id = properties.city_id AND cities.is_active = ?", true).
		Scopes(search.FacetPredicate(f)).
		Preload("City").
		Order("properties.created_at DESC").
		Limit(limit).
		Find(&sample).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sample properties: %w", err)
	}
	return sample, nil
}
