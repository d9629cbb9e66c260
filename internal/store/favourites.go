package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propsnap/propsnap/internal/models"
)

// FavouriteRepo persists user favourites.
type FavouriteRepo struct {
	db *gorm.DB
}

// NewFavouriteRepo returns a FavouriteRepo over db.
func NewFavouriteRepo(db *gorm.DB) *FavouriteRepo {
	return &FavouriteRepo{db: db}
}

// Add favourites propertyID for userID. It reports false when the pair
// already existed.
func (r *FavouriteRepo) Add(ctx context.Context, userID, propertyID string) (bool, error) {
	fav := &models.Favourite{UserID: userID, PropertyID: propertyID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "property_id"}},
		DoNothing: true,
	}).Create(fav)
	if res.Error != nil {
		return false, fmt.Errorf("failed to add favourite: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Remove deletes the pair if present and reports whether a row went away.
func (r *FavouriteRepo) Remove(ctx context.Context, userID, propertyID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favourite{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favourite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListProperties returns the user's favourites, newest first, each with the
// property, its city, images and the user's own favourite rows.
func (r *FavouriteRepo) ListProperties(ctx context.Context, userID string) ([]models.Favourite, error) {
	favs := make([]models.Favourite, 0)
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Property.City").
		Preload("Property.Images", oldestFirst).
		Preload("Property.Favourites", viewerFavourites(userID)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favourites: %w", err)
	}
	return favs, nil
}
