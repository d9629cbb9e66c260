package service

import (
	"context"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/validation"
)

type FavouriteService struct {
	deps *Deps
}

// NewFavouriteService returns a FavouriteService.
func NewFavouriteService(deps *Deps) *FavouriteService {
	return &FavouriteService{deps: deps}
}

type FavouriteInput struct {
	PropertyID string `json:"propertyId" validate:"required,id"`
}

// Add favourites a property. It reports false when it was already a favourite.
func (s *FavouriteService) Add(ctx context.Context, userID string, in FavouriteInput) (bool, error) {
	if err := validation.Struct(in); err != nil {
		return false, err
	}
	ok, err := s.deps.Store.Properties.Exists(ctx, in.PropertyID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, apperr.NotFound("property not found")
	}
	return s.deps.Store.Favourites.Add(ctx, userID, in.PropertyID)
}

// Remove is idempotent and reports whether a favourite was deleted.
func (s *FavouriteService) Remove(ctx context.Context, userID string, in FavouriteInput) (bool, error) {
	if err := validation.Struct(in); err != nil {
		return false, err
	}
	return s.deps.Store.Favourites.Remove(ctx, userID, in.PropertyID)
}

// List returns the user's favourite properties, most recently favourited first.
func (s *FavouriteService) List(ctx context.Context, userID string) ([]models.Property, error) {
	favs, err := s.deps.Store.Favourites.ListProperties(ctx, userID)
	if err != nil {
		return nil, err
	}
	props := make([]models.Property, 0, len(favs))
	for _, f := range favs {
		if f.Property != nil {
			props = append(props, *f.Property)
		}
	}
	return props, nil
}
