package search

import (
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
)

// Scope applies the listing filter to a query on the properties table.
// City, state and country are matched on the referenced city.
func (f PropertyFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.City != "" || f.State != "" || f.Country != "" {
			cities := db.Session(&gorm.Session{NewDB: true}).Model(&models.City{}).Select("id")
			if f.City != "" {
				cities = cities.Where("LOWER(name) = LOWER(?)", f.City)
			}
			if f.State != "" {
				cities = cities.Where("state = ?", f.State)
			}
			if f.Country != "" {
				cities = cities.Where("country = ?", f.Country)
			}
			db = db.Where("properties.city_id IN (?)", cities)
		}
		if f.Type != "" {
			db = db.Where("properties.type = ?", f.Type)
		}
		if f.ListingType != "" {
			db = db.Where("properties.listing_type = ?", f.ListingType)
		}
		if f.BHK != nil {
			db = db.Where("properties.bhk = ?", *f.BHK)
		}
		if f.Furnished != nil {
			db = db.Where("properties.furnished = ?", *f.Furnished)
		}
		if f.MinPrice != nil {
			db = db.Where("properties.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("properties.price <= ?", *f.MaxPrice)
		}
		return db
	}
}

// FacetPredicate is the single property-side predicate used both to decide
// which cities qualify and to count matching properties per city.
func FacetPredicate(f FacetFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("properties.available = ?", true)
		if f.Type != "" {
			db = db.Where("properties.type = ?", f.Type)
		}
		if f.ListingType != "" {
			db = db.Where("properties.listing_type = ?", f.ListingType)
		}
		if f.BHK != nil {
			if f.BHKAtLeast {
				db = db.Where("properties.bhk >= ?", *f.BHK)
			} else {
				db = db.Where("properties.bhk = ?", *f.BHK)
			}
		}
		return db
	}
}
