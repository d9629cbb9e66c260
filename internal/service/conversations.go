package service

import (
	"context"
	"strings"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/store"
	"github.com/propsnap/propsnap/internal/validation"
)

// messagePageSize caps how many messages one fetch returns.
const messagePageSize = 50

type ConversationService struct {
	deps *Deps
}

// NewConversationService returns a ConversationService.
func NewConversationService(deps *Deps) *ConversationService {
	return &ConversationService{deps: deps}
}

type ConversationInput struct {
	SellerID   string `json:"sellerId" validate:"required,id"`
	BuyerID    string `json:"buyerId" validate:"required,id"`
	PropertyID string `json:"propertyId" validate:"required,id"`
}

type SendMessageInput struct {
	ConversationID string  `json:"id" validate:"required,id"`
	Content        string  `json:"content" validate:"required,min=1"`
	MessageType    string  `json:"messageType" validate:"omitempty,oneof=TEXT IMAGE FILE"`
	AttachmentURL  *string `json:"attachmentUrl" validate:"omitempty,url"`
	AttachmentType *string `json:"attachmentType"`
}

type MessagePage struct {
	Messages   []models.Message `json:"messages"`
	TotalCount int              `json:"totalCount"`
}

// Open returns the conversation for (seller, buyer, property), creating it
// on first use. The requester must be one of the two parties.
func (s *ConversationService) Open(ctx context.Context, requesterID string, in ConversationInput) (*models.Conversation, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if requesterID != in.BuyerID && requesterID != in.SellerID {
		return nil, apperr.Forbidden("you can only open conversations you take part in")
	}
	if in.BuyerID == in.SellerID {
		return nil, apperr.FieldError("buyerId", "buyer and seller must differ")
	}

	p, err := s.deps.Store.Properties.FindByID(ctx, in.PropertyID)
	if err != nil {
		return nil, notFound(err, "property not found")
	}
	if p.ListedByID != in.SellerID {
		return nil, apperr.FieldError("sellerId", "seller must be the property owner")
	}

	conv, _, err := s.deps.Store.Conversations.FindOrCreate(ctx, in.SellerID, in.BuyerID, in.PropertyID)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ListForSeller returns the requester's conversations as seller.
func (s *ConversationService) ListForSeller(ctx context.Context, sellerID, propertyID string) ([]models.Conversation, error) {
	if propertyID != "" && !models.IsUUID(propertyID) {
		return nil, apperr.FieldError("propertyId", "must be a valid id")
	}
	return s.deps.Store.Conversations.ListForSeller(ctx, sellerID, propertyID)
}

// Send appends a message. The receiver is the other party; a sender who is
// neither party is rejected.
func (s *ConversationService) Send(ctx context.Context, senderID string, in SendMessageInput) (*models.Message, error) {
	in.MessageType = strings.ToUpper(strings.TrimSpace(in.MessageType))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	msgType, _ := models.ParseMessageType(in.MessageType)

	conv, err := s.deps.Store.Conversations.FindByID(ctx, in.ConversationID)
	if err != nil {
		return nil, notFound(err, "conversation not found")
	}
	receiverID, ok := conv.Counterpart(senderID)
	if !ok {
		return nil, apperr.Forbidden("you are not part of this conversation")
	}

	m := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        in.Content,
		MessageType:    msgType,
		AttachmentURL:  in.AttachmentURL,
		AttachmentType: in.AttachmentType,
	}
	err = s.deps.Store.Tx(ctx, func(tx *store.Store) error {
		return tx.Conversations.AddMessage(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	s.deps.publish(ctx, events.MessageSent, map[string]any{
		"messageId":      m.ID,
		"conversationId": m.ConversationID,
		"senderId":       m.SenderID,
		"receiverId":     m.ReceiverID,
	})
	return m, nil
}

// Messages returns the latest page of a conversation, oldest first.
func (s *ConversationService) Messages(ctx context.Context, requesterID, conversationID string) (*MessagePage, error) {
	if !models.IsUUID(conversationID) {
		return nil, apperr.FieldError("id", "must be a valid id")
	}
	conv, err := s.deps.Store.Conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, "conversation not found")
	}
	if _, ok := conv.Counterpart(requesterID); !ok {
		return nil, apperr.Forbidden("you are not part of this conversation")
	}

	msgs, err := s.deps.Store.Conversations.RecentMessages(ctx, conv.ID, messagePageSize)
	if err != nil {
		return nil, err
	}
	return &MessagePage{Messages: msgs, TotalCount: len(msgs)}, nil
}
