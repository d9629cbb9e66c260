// Package search parses listing query parameters into typed filters and turns
// those filters into gorm scopes.
package search

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/models"
)

// Mode selects how get-properties resolves a request.
type Mode int

const (
	ModeByID Mode = iota + 1
	ModeDetail
	ModeFiltered
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeByID:
		return "by_id"
	case ModeDetail:
		return "detail"
	case ModeFiltered:
		return "filtered"
	case ModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// PropertyFilter narrows a listing search. Zero values mean "no constraint".
type PropertyFilter struct {
	City        string
	State       string
	Country     string
	Type        models.PropertyType
	ListingType models.ListingType
	BHK         *int
	Furnished   *bool
	MinPrice    *float64
	MaxPrice    *float64
}

// IsEmpty reports whether no constraint is set.
func (f PropertyFilter) IsEmpty() bool {
	return f.City == "" && f.State == "" && f.Country == "" &&
		f.Type == "" && f.ListingType == "" &&
		f.BHK == nil && f.Furnished == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// PropertyQuery is the parsed form of a get-properties request.
type PropertyQuery struct {
	Mode       Mode
	ID         string
	PropertyID string
	Filter     PropertyFilter
}

var propertyQueryKeys = []string{
	"id", "propertyId", "city", "state", "country", "type",
	"bhk", "furnished", "minPrice", "maxPrice", "listingType",
}

// ParsePropertyQuery resolves the retrieval mode with precedence
// id, propertyId, filter set, then unfiltered.
//
// A repeated key is rejected. city values "" and "undefined" mean no city
// constraint. Unparsable bhk is dropped; unparsable price bounds are rejected.
func ParsePropertyQuery(q url.Values) (PropertyQuery, error) {
	values, err := singleValues(q, propertyQueryKeys)
	if err != nil {
		return PropertyQuery{}, err
	}

	if id := values["id"]; id != "" {
		if !models.IsUUID(id) {
			return PropertyQuery{}, apperr.FieldError("id", "must be a valid id")
		}
		return PropertyQuery{Mode: ModeByID, ID: id}, nil
	}

	if pid := values["propertyId"]; pid != "" {
		if !models.IsUUID(pid) {
			return PropertyQuery{}, apperr.FieldError("propertyId", "must be a valid id")
		}
		return PropertyQuery{Mode: ModeDetail, PropertyID: pid}, nil
	}

	var f PropertyFilter
	fields := make(map[string]string)

	if city := values["city"]; city != "" && !strings.EqualFold(city, "undefined") {
		f.City = city
	}
	f.State = values["state"]
	f.Country = values["country"]

	if raw := values["type"]; raw != "" {
		pt, ok := models.ParsePropertyType(raw)
		if !ok {
			fields["type"] = "must be one of APARTMENT, HOUSE, PG, COMMERCIAL, VILLA, PLOT"
		}
		f.Type = pt
	}
	if raw := values["listingType"]; raw != "" {
		lt, ok := models.ParseListingType(raw)
		if !ok {
			fields["listingType"] = "must be one of COMMERCIAL, BUY, RENT"
		}
		f.ListingType = lt
	}
	if n, ok := leadingInt(values["bhk"]); ok {
		f.BHK = &n
	}
	if raw, ok := values["furnished"]; ok && raw != "" {
		furnished := raw == "true"
		f.Furnished = &furnished
	}
	if f.MinPrice, err = parsePrice(values["minPrice"]); err != nil {
		fields["minPrice"] = err.Error()
	}
	if f.MaxPrice, err = parsePrice(values["maxPrice"]); err != nil {
		fields["maxPrice"] = err.Error()
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		fields["minPrice"] = "must not exceed maxPrice"
	}

	if len(fields) > 0 {
		return PropertyQuery{}, apperr.Validation("invalid query parameters", fields)
	}

	if f.IsEmpty() {
		return PropertyQuery{Mode: ModeAll}, nil
	}
	return PropertyQuery{Mode: ModeFiltered, Filter: f}, nil
}

// FacetFilter is the property-side predicate for city facets.
type FacetFilter struct {
	Type        models.PropertyType
	ListingType models.ListingType
	BHK         *int
	// BHKAtLeast turns BHK into a lower bound.
	BHKAtLeast bool

	// Raw echoes the request values for the response.
	Raw map[string]string
}

var facetQueryKeys = []string{"propertyType", "bhk", "listingType"}

// ParseCityFacetQuery reads propertyType, bhk and listingType.
// A bhk containing "5+" means five or more. Otherwise the leading integer of
// the first word is used, and a value without one is ignored.
func ParseCityFacetQuery(q url.Values) (FacetFilter, error) {
	values, err := singleValues(q, facetQueryKeys)
	if err != nil {
		return FacetFilter{}, err
	}

	f := FacetFilter{Raw: map[string]string{
		"propertyType": values["propertyType"],
		"bhk":          values["bhk"],
		"listingType":  values["listingType"],
	}}
	fields := make(map[string]string)

	if raw := values["propertyType"]; raw != "" {
		pt, ok := models.ParsePropertyType(raw)
		if !ok {
			fields["propertyType"] = "must be one of APARTMENT, HOUSE, PG, COMMERCIAL, VILLA, PLOT"
		}
		f.Type = pt
	}
	if raw := values["listingType"]; raw != "" {
		lt, ok := models.ParseListingType(raw)
		if !ok {
			fields["listingType"] = "must be one of COMMERCIAL, BUY, RENT"
		}
		f.ListingType = lt
	}
	if raw := values["bhk"]; raw != "" {
		first := strings.Fields(raw)
		switch {
		case strings.Contains(raw, "5+"):
			n := 5
			f.BHK, f.BHKAtLeast = &n, true
		case len(first) > 0:
			if n, ok := leadingInt(first[0]); ok {
				f.BHK = &n
			}
		}
	}

	if len(fields) > 0 {
		return FacetFilter{}, apperr.Validation("invalid query parameters", fields)
	}
	return f, nil
}

// CacheKey is a stable encoding of the predicate.
func (f FacetFilter) CacheKey() string {
	bhk := "-"
	if f.BHK != nil {
		bhk = strconv.Itoa(*f.BHK)
		if f.BHKAtLeast {
			bhk += "+"
		}
	}
	return fmt.Sprintf("type=%s|listing=%s|bhk=%s", f.Type, f.ListingType, bhk)
}

// singleValues returns the first value for each allowed key and rejects
// keys that were given more than once.
func singleValues(q url.Values, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	fields := make(map[string]string)
	for _, key := range keys {
		vs, ok := q[key]
		if !ok {
			continue
		}
		if len(vs) > 1 {
			fields[key] = "must be a single value"
			continue
		}
		out[key] = strings.TrimSpace(vs[0])
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid query parameters", fields)
	}
	return out, nil
}

// leadingInt parses the leading decimal digits of s.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("must be a non-negative number")
	}
	return &v, nil
}
