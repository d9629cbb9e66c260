package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propsnap/propsnap/internal/models"
)

// ConversationRepo persists conversations and their messages.
type ConversationRepo struct {
	db *gorm.DB
}

// NewConversationRepo returns a ConversationRepo over db.
func NewConversationRepo(db *gorm.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// FindOrCreate returns the conversation for the triple, inserting it if
// absent. created reports whether this call inserted the row.
func (r *ConversationRepo) FindOrCreate(ctx context.Context, sellerID, buyerID, propertyID string) (*models.Conversation, bool, error) {
	db := r.db.WithContext(ctx)

	conv := &models.Conversation{SellerID: sellerID, BuyerID: buyerID, PropertyID: propertyID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}, {Name: "buyer_id"}, {Name: "property_id"}},
		DoNothing: true,
	}).Create(conv)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to upsert conversation: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return conv, true, nil
	}

	var existing models.Conversation
	err := db.Where("seller_id = ? AND buyer_id = ? AND property_id = ?", sellerID, buyerID, propertyID).
		First(&existing).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to load conversation: %w", translate(err))
	}
	return &existing, false, nil
}

func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListForSeller returns the seller's conversations, most recently active
// first, optionally limited to one property.
func (r *ConversationRepo) ListForSeller(ctx context.Context, sellerID, propertyID string) ([]models.Conversation, error) {
	q := r.db.WithContext(ctx).
		Preload("Buyer", userSummary).
		Preload("Property", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title", "bhk", "type", "listing_type", "price", "city_id")
		}).
		Preload("Property.City", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "state")
		}).
		Where("seller_id = ?", sellerID)
	if propertyID != "" {
		q = q.Where("property_id = ?", propertyID)
	}

	convs := make([]models.Conversation, 0)
	if err := q.Order("updated_at DESC").Order("id DESC").Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// AddMessage inserts m and bumps the conversation's updated_at so listings
// order by last activity.
func (r *ConversationRepo) AddMessage(ctx context.Context, m *models.Message) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Sender", "Receiver").Create(m).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	err := db.Model(&models.Conversation{}).
		Where("id = ?", m.ConversationID).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit of the newest messages in ascending
// order, with sender and receiver summaries.
func (r *ConversationRepo) RecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	msgs := make([]models.Message, 0, limit)
	err := r.db.WithContext(ctx).
		Preload("Sender", userSummary).
		Preload("Receiver", userSummary).
		Where("conversation_id = ?", conversationID).
		Scopes(newestFirst).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
