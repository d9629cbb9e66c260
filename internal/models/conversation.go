package models

import "strings"

// Conversation is the single thread between a buyer and the seller of a property.
type Conversation struct {
	Base
	SellerID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_participants" json:"sellerId"`
	Seller     *User     `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	BuyerID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_participants" json:"buyerId"`
	Buyer      *User     `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	PropertyID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_conversations_participants;index" json:"propertyId"`
	Property   *Property `json:"property,omitempty"`
	Messages   []Message `json:"messages,omitempty"`
}

// Counterpart returns the other participant for userID.
// ok is false when userID takes no part in the conversation.
func (c *Conversation) Counterpart(userID string) (string, bool) {
	switch userID {
	case c.BuyerID:
		return c.SellerID, true
	case c.SellerID:
		return c.BuyerID, true
	default:
		return "", false
	}
}

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeFile  MessageType = "FILE"
)

func ParseMessageType(s string) (MessageType, bool) {
	if strings.TrimSpace(s) == "" {
		return MessageTypeText, true
	}
	t := MessageType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return t, true
	}
	return "", false
}

// Message belongs to a conversation. ReceiverID is derived from the sender.
type Message struct {
	Base
	ConversationID string      `gorm:"type:varchar(36);not null;index" json:"conversationId"`
	SenderID       string      `gorm:"type:varchar(36);not null" json:"senderId"`
	Sender         *User       `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID     string      `gorm:"type:varchar(36);not null" json:"receiverId"`
	Receiver       *User       `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	MessageType    MessageType `gorm:"type:varchar(10);not null" json:"messageType"`
	AttachmentURL  *string     `json:"attachmentUrl,omitempty"`
	AttachmentType *string     `json:"attachmentType,omitempty"`
	IsRead         bool        `gorm:"not null" json:"isRead"`
}
