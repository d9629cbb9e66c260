package models

// City is created lazily the first time a listing names an unseen (name, state) pair.
type City struct {
	Base
	Name     string `gorm:"not null;uniqueIndex:idx_cities_name_state" json:"name"`
	State    string `gorm:"not null;uniqueIndex:idx_cities_name_state" json:"state"`
	Country  string `gorm:"not null" json:"country"`
	IsActive bool   `gorm:"not null;index" json:"isActive"`
}
