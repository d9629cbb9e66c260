package models

// Enquiry is a question raised on a property by any authenticated user.
type Enquiry struct {
	Base
	PropertyID string         `gorm:"type:varchar(36);not null;index" json:"propertyId"`
	Property   *Property      `json:"property,omitempty"`
	UserID     string         `gorm:"type:varchar(36);not null;index" json:"userId"`
	User       *User          `json:"user,omitempty"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	Replies    []EnquiryReply `json:"replies"`
}

// EnquiryReply is an answer to an enquiry, written by the property owner.
type EnquiryReply struct {
	Base
	EnquiryID string `gorm:"type:varchar(36);not null;index" json:"enquiryId"`
	UserID    string `gorm:"type:varchar(36);not null" json:"userId"`
	User      *User  `json:"user,omitempty"`
	Message   string `gorm:"type:text;not null" json:"message"`
}
