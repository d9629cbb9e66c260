package service

import (
	"context"
	"errors"

	"github.com/propsnap/propsnap/internal/cache"
	"github.com/propsnap/propsnap/internal/logging"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/search"
	"github.com/propsnap/propsnap/internal/store"
)

const (
	facetSampleSize  = 3
	facetCachePrefix = "cities"
)

// QueryService serves listing searches and city facets.
type QueryService struct {
	deps *Deps
}

// NewQueryService returns a QueryService.
func NewQueryService(deps *Deps) *QueryService {
	return &QueryService{deps: deps}
}

// PropertiesResult holds either one property (by id or detail) or a list.
type PropertiesResult struct {
	Mode       search.Mode
	Property   *models.Property
	Properties []models.Property
}

// Single reports whether the result is a single, possibly nil, property.
func (r PropertiesResult) Single() bool {
	return r.Mode == search.ModeByID || r.Mode == search.ModeDetail
}

// Properties resolves a parsed get-properties request. viewerID may be empty
// for anonymous callers; it only scopes which favourite rows are returned.
// A missing single property is a nil result, not an error.
func (s *QueryService) Properties(ctx context.Context, q search.PropertyQuery, viewerID string) (PropertiesResult, error) {
	res := PropertiesResult{Mode: q.Mode}
	switch q.Mode {
	case search.ModeByID:
		p, err := s.deps.Store.Properties.FindByID(ctx, q.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return res, err
		}
		res.Property = p
	case search.ModeDetail:
		p, err := s.deps.Store.Properties.FindDetail(ctx, q.PropertyID, viewerID)
		if err != nil {
			return res, err
		}
		res.Property = p
	case search.ModeFiltered:
		props, err := s.deps.Store.Properties.List(ctx, &q.Filter, viewerID)
		if err != nil {
			return res, err
		}
		res.Properties = props
	default:
		props, err := s.deps.Store.Properties.List(ctx, nil, viewerID)
		if err != nil {
			return res, err
		}
		res.Properties = props
	}
	return res, nil
}

// CityFacets is the get-cities response body.
type CityFacets struct {
	Cities      []store.CityFacet `json:"cities"`
	Filters     map[string]string `json:"filters"`
	TotalCities int               `json:"totalCitiesFound"`
	Sample      []models.Property `json:"sampleMatchingProperties"`
}

type cachedFacets struct {
	Cities []store.CityFacet `json:"cities"`
	Sample []models.Property `json:"sample"`
}

// Cities returns active cities with matching available listings and their
// counts. Results are cached per predicate; cache failures fall through to
// the database.
func (s *QueryService) Cities(ctx context.Context, f search.FacetFilter) (*CityFacets, error) {
	key := cache.Key(facetCachePrefix, map[string]string{"predicate": f.CacheKey()})
	log := logging.Ctx(ctx)

	var entry cachedFacets
	found, err := s.deps.Cache.Get(ctx, key, &entry)
	switch {
	case err != nil:
		s.deps.Metrics.CacheResult("error")
		log.Warn().Err(err).Str("key", key).Msg("failed to read city facets from cache")
	case found:
		s.deps.Metrics.CacheResult("hit")
		return facetsResponse(f, entry), nil
	default:
		s.deps.Metrics.CacheResult("miss")
	}

	entry.Cities, err = s.deps.Store.Cities.Facets(ctx, f)
	if err != nil {
		return nil, err
	}
	entry.Sample, err = s.deps.Store.Cities.SampleMatching(ctx, f, facetSampleSize)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Cache.Set(ctx, key, entry, s.deps.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to write city facets to cache")
	}
	return facetsResponse(f, entry), nil
}

func facetsResponse(f search.FacetFilter, entry cachedFacets) *CityFacets {
	filters := f.Raw
	if filters == nil {
		filters = map[string]string{}
	}
	return &CityFacets{
		Cities:      entry.Cities,
		Filters:     filters,
		TotalCities: len(entry.Cities),
		Sample:      entry.Sample,
	}
}
