package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/search"
)

// PropertyRepo persists listings and their images.
type PropertyRepo struct {
	db *gorm.DB
}

// NewPropertyRepo returns a PropertyRepo over db.
func NewPropertyRepo(db *gorm.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

// viewerFavourites restricts preloaded favourites to the viewer's own rows.
// Anonymous viewers get none.
func viewerFavourites(viewerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if viewerID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", viewerID)
	}
}

// withListing preloads what every property response carries.
func withListing(db *gorm.DB, favourites func(*gorm.DB) *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", oldestFirst).
		Preload("City").
		Preload("ListedBy", userSummary).
		Preload("Favourites", favourites)
}

func allFavourites(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// withEnquiries preloads enquiries newest first, each with its replies oldest first.
func withEnquiries(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Enquiries", newestFirst).
		Preload("Enquiries.User", userSummary).
		Preload("Enquiries.Replies", oldestFirst).
		Preload("Enquiries.Replies.User", userSummary)
}

// FindByID loads a property with its images and city.
func (r *PropertyRepo) FindByID(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	err := r.db.WithContext(ctx).
		Preload("Images", oldestFirst).
		Preload("City").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindDetail loads a property with everything the detail view shows.
// Returns (nil, nil) when no such property exists.
func (r *PropertyRepo) FindDetail(ctx context.Context, id, viewerID string) (*models.Property, error) {
	var p models.Property
	err := withEnquiries(withListing(r.db.WithContext(ctx), viewerFavourites(viewerID))).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property detail: %w", err)
	}
	return &p, nil
}

// List returns properties matching filter, newest first. A nil filter lists all.
func (r *PropertyRepo) List(ctx context.Context, filter *search.PropertyFilter, viewerID string) ([]models.Property, error) {
	q := withListing(r.db.WithContext(ctx).Model(&models.Property{}), viewerFavourites(viewerID))
	if filter != nil {
		q = q.Scopes(filter.Scope())
	}

	props := make([]models.Property, 0)
	if err := q.Order("properties.created_at DESC").Order("properties.id DESC").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

// ListByOwner returns the owner's properties newest first with enquiries
// and every user's favourite rows.
func (r *PropertyRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	props := make([]models.Property, 0)
	err := withEnquiries(withListing(r.db.WithContext(ctx), allFavourites)).
		Where("listed_by_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owner properties: %w", err)
	}
	return props, nil
}

// Exists reports whether a property with id exists.
func (r *PropertyRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check property: %w", err)
	}
	return n > 0, nil
}

// AddressTaken reports whether owner already lists address in city.
// excludeID skips the property being updated.
func (r *PropertyRepo) AddressTaken(ctx context.Context, ownerID, cityID, address, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Property{}).
		Where("listed_by_id = ? AND city_id = ? AND address = ?", ownerID, cityID, address)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check address: %w", err)
	}
	return n > 0, nil
}

// Create inserts p together with p.Images. p.City is not written.
func (r *PropertyRepo) Create(ctx context.Context, p *models.Property) error {
	city := p.City
	p.City = nil
	defer func() { p.City = city }()

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if err = translate(err); err == ErrDuplicate {
			return err
		}
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// Update writes the given columns. Map values allow zero values such as
// furnished=false to be stored.
func (r *PropertyRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		if err = translate(err); err == ErrDuplicate {
			return err
		}
		return fmt.Errorf("failed to update property: %w", err)
	}
	return nil
}

// ImageChanges describes how an update reconciles a property's images.
type ImageChanges struct {
	// Keep lists the image ids to retain. Nil keeps every image.
	Keep         []string
	Descriptions map[string]string
	Add          []models.PropertyImage
}

// ReconcileImages applies changes to the images of property id and returns
// the rows it deleted so their files can be removed.
func (r *PropertyRepo) ReconcileImages(ctx context.Context, id string, changes ImageChanges) ([]models.PropertyImage, error) {
	db := r.db.WithContext(ctx)

	removed := make([]models.PropertyImage, 0)
	if changes.Keep != nil {
		q := db.Where("property_id = ?", id)
		if len(changes.Keep) > 0 {
			q = q.Where("id NOT IN ?", changes.Keep)
		}
		if err := q.Find(&removed).Error; err != nil {
			return nil, fmt.Errorf("failed to load images: %w", err)
		}
		if len(removed) > 0 {
			ids := make([]string, len(removed))
			for i, img := range removed {
				ids[i] = img.ID
			}
			if err := db.Where("id IN ?", ids).Delete(&models.PropertyImage{}).Error; err != nil {
				return nil, fmt.Errorf("failed to delete images: %w", err)
			}
		}
	}

	for imageID, desc := range changes.Descriptions {
		err := db.Model(&models.PropertyImage{}).
			Where("id = ? AND property_id = ?", imageID, id).
			Update("description", desc).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update image description: %w", err)
		}
	}

	if len(changes.Add) > 0 {
		for i := range changes.Add {
			changes.Add[i].PropertyID = id
		}
		if err := db.Create(&changes.Add).Error; err != nil {
			return nil, fmt.Errorf("failed to add images: %w", err)
		}
	}
	return removed, nil
}

// Delete removes a property and everything that references it. It should
// run inside a transaction. The deleted images are returned for file cleanup.
func (r *PropertyRepo) Delete(ctx context.Context, id string) ([]models.PropertyImage, error) {
	db := r.db.WithContext(ctx)
	sub := func() *gorm.DB { return db.Session(&gorm.Session{NewDB: true}) }

	images := make([]models.PropertyImage, 0)
	if err := db.Where("property_id = ?", id).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	enquiryIDs := sub().Model(&models.Enquiry{}).Select("id").Where("property_id = ?", id)
	conversationIDs := sub().Model(&models.Conversation{}).Select("id").Where("property_id = ?", id)

	steps := []struct {
		what  string
		model interface{}
		query string
		arg   interface{}
	}{
		{"images", &models.PropertyImage{}, "property_id = ?", id},
		{"favourites", &models.Favourite{}, "property_id = ?", id},
		{"enquiry replies", &models.EnquiryReply{}, "enquiry_id IN (?)", enquiryIDs},
		{"enquiries", &models.Enquiry{}, "property_id = ?", id},
		{"messages", &models.Message{}, "conversation_id IN (?)", conversationIDs},
		{"conversations", &models.Conversation{}, "property_id = ?", id},
		{"property", &models.Property{}, "id = ?", id},
	}
	for _, step := range steps {
		if err := sub().Where(step.query, step.arg).Delete(step.model).Error; err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", step.what, err)
		}
	}
	return images, nil
}
