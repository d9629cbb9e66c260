package models

// Favourite pairs a user with a property they saved. At most one row per pair.
type Favourite struct {
	Base
	UserID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favourites_user_property" json:"userId"`
	PropertyID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favourites_user_property;index" json:"propertyId"`
	Property   *Property `json:"property,omitempty"`
}
