package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
)

// EnquiryRepo persists enquiries and their replies.
type EnquiryRepo struct {
	db *gorm.DB
}

// NewEnquiryRepo returns an EnquiryRepo over db.
func NewEnquiryRepo(db *gorm.DB) *EnquiryRepo {
	return &EnquiryRepo{db: db}
}

func (r *EnquiryRepo) Create(ctx context.Context, e *models.Enquiry) error {
	if err := r.db.WithContext(ctx).Omit("Property", "User").Create(e).Error; err != nil {
		return fmt.Errorf("failed to create enquiry: %w", err)
	}
	return nil
}

// FindWithProperty loads an enquiry and the property it is about.
func (r *EnquiryRepo) FindWithProperty(ctx context.Context, id string) (*models.Enquiry, error) {
	var e models.Enquiry
	if err := r.db.WithContext(ctx).Preload("Property").Where("id = ?", id).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EnquiryRepo) CreateReply(ctx context.Context, reply *models.EnquiryReply) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(reply).Error; err != nil {
		return fmt.Errorf("failed to create reply: %w", err)
	}
	return nil
}

// ListForProperty returns a property's enquiries newest first, each with its
// asker and replies oldest first.
func (r *EnquiryRepo) ListForProperty(ctx context.Context, propertyID string) ([]models.Enquiry, error) {
	enquiries := make([]models.Enquiry, 0)
	err := r.db.WithContext(ctx).
		Preload("User", userSummary).
		Preload("Replies", oldestFirst).
		Preload("Replies.User", userSummary).
		Where("property_id = ?", propertyID).
		Scopes(newestFirst).
		Find(&enquiries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiries: %w", err)
	}
	return enquiries, nil
}
