package models

import "strings"

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypePG         PropertyType = "PG"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypeVilla      PropertyType = "VILLA"
	PropertyTypePlot       PropertyType = "PLOT"
)

var propertyTypes = []PropertyType{
	PropertyTypeApartment, PropertyTypeHouse, PropertyTypePG,
	PropertyTypeCommercial, PropertyTypeVilla, PropertyTypePlot,
}

// ParsePropertyType upper-cases s and reports whether it names a known type.
func ParsePropertyType(s string) (PropertyType, bool) {
	t := PropertyType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range propertyTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

type ListingType string

const (
	ListingTypeCommercial ListingType = "COMMERCIAL"
	ListingTypeBuy        ListingType = "BUY"
	ListingTypeRent       ListingType = "RENT"
)

func ParseListingType(s string) (ListingType, bool) {
	t := ListingType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case ListingTypeCommercial, ListingTypeBuy, ListingTypeRent:
		return t, true
	}
	return "", false
}

// Property is a listing owned by one user in one city.
// (ListedByID, CityID, Address) is unique.
type Property struct {
	Base
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Price       float64      `gorm:"not null;index" json:"price"`
	Type        PropertyType `gorm:"type:varchar(20);not null;index" json:"type"`
	ListingType ListingType  `gorm:"type:varchar(20);not null;index" json:"listingType"`
	BHK         int          `gorm:"column:bhk;not null" json:"bhk"`
	Sqft        float64      `gorm:"not null" json:"sqft"`
	Furnished   bool         `gorm:"not null" json:"furnished"`
	Available   bool         `gorm:"not null;index" json:"available"`
	Address     string       `gorm:"not null;uniqueIndex:idx_properties_owner_city_address" json:"address"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`

	CityID     string `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_properties_owner_city_address" json:"cityId"`
	City       *City  `json:"city,omitempty"`
	ListedByID string `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_properties_owner_city_address" json:"listedById"`
	ListedBy   *User  `gorm:"foreignKey:ListedByID" json:"listedBy,omitempty"`

	Images     []PropertyImage `json:"images"`
	Favourites []Favourite     `json:"favourites,omitempty"`
	Enquiries  []Enquiry       `json:"enquiries,omitempty"`
}

// PropertyImage is a stored image attached to a property.
type PropertyImage struct {
	Base
	PropertyID  string `gorm:"type:varchar(36);not null;index" json:"propertyId"`
	URL         string `gorm:"not null" json:"url"`
	Description string `json:"description"`
	// StorageKey identifies the file in the image store.
	StorageKey string `json:"-"`
}
