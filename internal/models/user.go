package models

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Phone    string `json:"phone,omitempty"`
}
