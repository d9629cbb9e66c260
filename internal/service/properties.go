package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/imagestore"
	"github.com/propsnap/propsnap/internal/logging"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/store"
	"github.com/propsnap/propsnap/internal/validation"
)

const defaultCountry = "India"

// PropertyService registers, updates and deletes listings.
type PropertyService struct {
	deps *Deps
}

// NewPropertyService returns a PropertyService.
func NewPropertyService(deps *Deps) *PropertyService {
	return &PropertyService{deps: deps}
}

// PropertyInput is the payload for a new listing.
type PropertyInput struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Description string  `json:"description" validate:"required,min=10"`
	Price       float64 `json:"price" validate:"finite,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=APARTMENT HOUSE PG COMMERCIAL VILLA PLOT"`
	ListingType string  `json:"listingType" validate:"required,oneof=COMMERCIAL BUY RENT"`
	BHK         int     `json:"bhk" validate:"gte=0"`
	Sqft        float64 `json:"sqft" validate:"finite,gt=0"`
	Furnished   bool    `json:"furnished"`
	Available   *bool   `json:"available"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required"`
	Country     string  `json:"country"`
	Address     string  `json:"address" validate:"required"`
	Latitude    float64 `json:"latitude" validate:"finite,latitude"`
	Longitude   float64 `json:"longitude" validate:"finite,longitude"`
}

func (in *PropertyInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	in.ListingType = strings.ToUpper(strings.TrimSpace(in.ListingType))
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = defaultCountry
	}
	in.Address = strings.TrimSpace(in.Address)
}

// PropertyPatch is a partial update. Nil fields are left unchanged.
type PropertyPatch struct {
	Title       *string  `json:"title" validate:"omitempty,min=3"`
	Description *string  `json:"description" validate:"omitempty,min=10"`
	Price       *float64 `json:"price" validate:"omitempty,finite,gt=0"`
	Type        *string  `json:"type" validate:"omitempty,oneof=APARTMENT HOUSE PG COMMERCIAL VILLA PLOT"`
	ListingType *string  `json:"listingType" validate:"omitempty,oneof=COMMERCIAL BUY RENT"`
	BHK         *int     `json:"bhk" validate:"omitempty,gte=0"`
	Sqft        *float64 `json:"sqft" validate:"omitempty,finite,gt=0"`
	Furnished   *bool    `json:"furnished"`
	Available   *bool    `json:"available"`
	City        *string  `json:"city" validate:"omitempty,min=1"`
	State       *string  `json:"state" validate:"omitempty,min=1"`
	Country     *string  `json:"country" validate:"omitempty,min=1"`
	Address     *string  `json:"address" validate:"omitempty,min=1"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,finite,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,finite,longitude"`
}

func (p *PropertyPatch) normalize() {
	for _, s := range []*string{p.Title, p.Description, p.City, p.State, p.Country, p.Address} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	for _, s := range []*string{p.Type, p.ListingType} {
		if s != nil {
			*s = strings.ToUpper(strings.TrimSpace(*s))
		}
	}
}

// columns maps set fields to their database columns.
func (p *PropertyPatch) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Type != nil {
		cols["type"] = models.PropertyType(*p.Type)
	}
	if p.ListingType != nil {
		cols["listing_type"] = models.ListingType(*p.ListingType)
	}
	if p.BHK != nil {
		cols["bhk"] = *p.BHK
	}
	if p.Sqft != nil {
		cols["sqft"] = *p.Sqft
	}
	if p.Furnished != nil {
		cols["furnished"] = *p.Furnished
	}
	if p.Available != nil {
		cols["available"] = *p.Available
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.Latitude != nil {
		cols["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		cols["longitude"] = *p.Longitude
	}
	return cols
}

// Upload is one image file received with a listing.
type Upload struct {
	Filename    string
	Content     io.Reader
	Description string
}

// ImageUpdate says which existing images survive an update and what to add.
type ImageUpdate struct {
	// Keep lists existing image ids to retain. Nil keeps every image.
	Keep         []string
	Descriptions map[string]string
	New          []Upload
}

// Register lists a new property for owner. Images are written first; if the
// listing cannot be saved they are removed again.
func (s *PropertyService) Register(ctx context.Context, ownerID string, in PropertyInput, uploads []Upload) (*models.Property, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(uploads) > s.deps.MaxImages {
		return nil, apperr.FieldError("images", fmt.Sprintf("at most %d images are allowed", s.deps.MaxImages))
	}

	images, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}
	p := &models.Property{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Type:        models.PropertyType(in.Type),
		ListingType: models.ListingType(in.ListingType),
		BHK:         in.BHK,
		Sqft:        in.Sqft,
		Furnished:   in.Furnished,
		Available:   available,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		ListedByID:  ownerID,
		Images:      images,
	}

	err = s.deps.Store.Tx(ctx, func(tx *store.Store) error {
		city, err := tx.Cities.FindOrCreate(ctx, in.City, in.State, in.Country)
		if err != nil {
			return err
		}
		if !strings.EqualFold(city.Country, in.Country) {
			return apperr.FieldError("country", fmt.Sprintf("%s, %s is already recorded in %s", city.Name, city.State, city.Country))
		}
		taken, err := tx.Properties.AddressTaken(ctx, ownerID, city.ID, in.Address, "")
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflict("property already listed by you")
		}
		p.CityID = city.ID
		if err := tx.Properties.Create(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("property already listed by you")
			}
			return err
		}
		p.City = city
		return nil
	})
	if err != nil {
		s.cleanup(ctx, images)
		return nil, err
	}
	s.deps.invalidateFacets(ctx)

	s.deps.publish(ctx, events.PropertyListed, map[string]any{
		"propertyId": p.ID,
		"listedById": p.ListedByID,
		"cityId":     p.CityID,
		"title":      p.Title,
	})
	return p, nil
}

// Update applies patch and reconciles images for the owner of id.
func (s *PropertyService) Update(ctx context.Context, ownerID, id string, patch PropertyPatch, imgs ImageUpdate) (*models.Property, error) {
	if !models.IsUUID(id) {
		return nil, apperr.FieldError("id", "must be a valid id")
	}
	patch.normalize()
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	current, err := s.deps.Store.Properties.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "property not found")
	}
	if current.ListedByID != ownerID {
		return nil, apperr.Forbidden("you can only update your own properties")
	}

	kept := len(current.Images)
	if imgs.Keep != nil {
		kept = countOwned(current.Images, imgs.Keep)
	}
	if kept+len(imgs.New) > s.deps.MaxImages {
		return nil, apperr.FieldError("images", fmt.Sprintf("at most %d images are allowed", s.deps.MaxImages))
	}

	added, err := s.storeUploads(ctx, imgs.New)
	if err != nil {
		return nil, err
	}

	var removed []models.PropertyImage
	err = s.deps.Store.Tx(ctx, func(tx *store.Store) error {
		cols := patch.columns()

		cityID := current.CityID
		if patch.City != nil || patch.State != nil || patch.Country != nil {
			name, state, country := current.City.Name, current.City.State, current.City.Country
			if patch.City != nil {
				name = *patch.City
			}
			if patch.State != nil {
				state = *patch.State
			}
			if patch.Country != nil {
				country = *patch.Country
			}
			city, err := tx.Cities.FindOrCreate(ctx, name, state, country)
			if err != nil {
				return err
			}
			// Cities are unique on (name, state); the country of an existing one is fixed.
			if patch.Country != nil && !strings.EqualFold(city.Country, country) {
				return apperr.FieldError("country", fmt.Sprintf("%s, %s is already recorded in %s", city.Name, city.State, city.Country))
			}
			cityID = city.ID
			cols["city_id"] = cityID
		}

		address := current.Address
		if patch.Address != nil {
			address = *patch.Address
		}
		if cityID != current.CityID || address != current.Address {
			taken, err := tx.Properties.AddressTaken(ctx, ownerID, cityID, address, id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("property already listed by you")
			}
		}

		if err := tx.Properties.Update(ctx, id, cols); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.Conflict("property already listed by you")
			}
			return err
		}

		var err error
		removed, err = tx.Properties.ReconcileImages(ctx, id, store.ImageChanges{
			Keep:         imgs.Keep,
			Descriptions: imgs.Descriptions,
			Add:          added,
		})
		return err
	})
	if err != nil {
		s.cleanup(ctx, added)
		return nil, err
	}
	s.deps.invalidateFacets(ctx)
	s.cleanup(ctx, removed)

	updated, err := s.deps.Store.Properties.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload property: %w", err)
	}
	return updated, nil
}

// Delete removes the owner's property and everything attached to it.
func (s *PropertyService) Delete(ctx context.Context, ownerID, id string) error {
	if !models.IsUUID(id) {
		return apperr.FieldError("id", "must be a valid id")
	}
	current, err := s.deps.Store.Properties.FindByID(ctx, id)
	if err != nil {
		return notFound(err, "property not found")
	}
	if current.ListedByID != ownerID {
		return apperr.Forbidden("you can only delete your own properties")
	}

	var images []models.PropertyImage
	err = s.deps.Store.Tx(ctx, func(tx *store.Store) error {
		var err error
		images, err = tx.Properties.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	s.deps.invalidateFacets(ctx)
	s.cleanup(ctx, images)
	return nil
}

// Mine returns the owner's listings, newest first.
func (s *PropertyService) Mine(ctx context.Context, ownerID string) ([]models.Property, error) {
	return s.deps.Store.Properties.ListByOwner(ctx, ownerID)
}

func (s *PropertyService) storeUploads(ctx context.Context, uploads []Upload) ([]models.PropertyImage, error) {
	images := make([]models.PropertyImage, 0, len(uploads))
	for _, u := range uploads {
		stored, err := s.deps.Images.Put(ctx, u.Filename, u.Content)
		if err != nil {
			s.cleanup(ctx, images)
			switch {
			case errors.Is(err, imagestore.ErrUnsupportedType):
				return nil, apperr.FieldError("images", fmt.Sprintf("%s: only jpeg, png, gif and webp images are allowed", u.Filename))
			case errors.Is(err, imagestore.ErrTooLarge):
				return nil, apperr.FieldError("images", fmt.Sprintf("%s: file is too large", u.Filename))
			default:
				return nil, fmt.Errorf("failed to store image: %w", err)
			}
		}
		images = append(images, models.PropertyImage{
			URL:         stored.URL,
			Description: u.Description,
			StorageKey:  stored.ID,
		})
	}
	return images, nil
}

func (s *PropertyService) cleanup(ctx context.Context, images []models.PropertyImage) {
	if len(images) == 0 {
		return
	}
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.StorageKey
	}
	imagestore.Cleanup(ctx, s.deps.Images, logging.Ctx(ctx), ids...)
}

func countOwned(images []models.PropertyImage, keep []string) int {
	want := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		want[id] = struct{}{}
	}
	n := 0
	for _, img := range images {
		if _, ok := want[img.ID]; ok {
			n++
		}
	}
	return n
}
