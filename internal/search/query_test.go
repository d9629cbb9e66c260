package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/models"
)

const someID = "0b7e3f2a-8f5c-4a57-9f61-2f1d3c4b5a69"

func TestParsePropertyQueryPrecedence(t *testing.T) {
	q, err := ParsePropertyQuery(url.Values{"id": {someID}, "propertyId": {"ignored"}, "city": {"Pune"}})
	require.NoError(t, err)
	assert.Equal(t, ModeByID, q.Mode)
	assert.Equal(t, someID, q.ID)

	q, err = ParsePropertyQuery(url.Values{"propertyId": {someID}, "city": {"Pune"}})
	require.NoError(t, err)
	assert.Equal(t, ModeDetail, q.Mode)
	assert.Equal(t, someID, q.PropertyID)

	q, err = ParsePropertyQuery(url.Values{"city": {"Pune"}})
	require.NoError(t, err)
	assert.Equal(t, ModeFiltered, q.Mode)
	assert.Equal(t, "Pune", q.Filter.City)

	q, err = ParsePropertyQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, ModeAll, q.Mode)
}

func TestParsePropertyQueryRejectsRepeatedKeys(t *testing.T) {
	_, err := ParsePropertyQuery(url.Values{"propertyId": {someID, someID}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "must be a single value", apperr.From(err).Fields["propertyId"])
}

func TestParsePropertyQueryRejectsMalformedIDs(t *testing.T) {
	_, err := ParsePropertyQuery(url.Values{"propertyId": {"42"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = ParsePropertyQuery(url.Values{"id": {"nope"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestParsePropertyQueryCityUndefinedMeansNoCity(t *testing.T) {
	for _, city := range []string{"", "undefined", "Undefined", "   "} {
		q, err := ParsePropertyQuery(url.Values{"city": {city}})
		require.NoError(t, err)
		assert.Equal(t, ModeAll, q.Mode, "city=%q", city)
	}

	q, err := ParsePropertyQuery(url.Values{"city": {"undefined"}, "type": {"villa"}})
	require.NoError(t, err)
	assert.Equal(t, ModeFiltered, q.Mode)
	assert.Empty(t, q.Filter.City)
	assert.Equal(t, models.PropertyTypeVilla, q.Filter.Type)
}

func TestParsePropertyQueryNumericFilters(t *testing.T) {
	q, err := ParsePropertyQuery(url.Values{
		"bhk":         {"3"},
		"furnished":   {"true"},
		"minPrice":    {"1000"},
		"maxPrice":    {"5000.5"},
		"listingType": {"rent"},
	})
	require.NoError(t, err)
	require.NotNil(t, q.Filter.BHK)
	assert.Equal(t, 3, *q.Filter.BHK)
	require.NotNil(t, q.Filter.Furnished)
	assert.True(t, *q.Filter.Furnished)
	assert.Equal(t, 1000.0, *q.Filter.MinPrice)
	assert.Equal(t, 5000.5, *q.Filter.MaxPrice)
	assert.Equal(t, models.ListingTypeRent, q.Filter.ListingType)

	q, err = ParsePropertyQuery(url.Values{"bhk": {"many"}, "furnished": {"yes"}})
	require.NoError(t, err)
	assert.Nil(t, q.Filter.BHK, "non-numeric bhk is dropped")
	require.NotNil(t, q.Filter.Furnished)
	assert.False(t, *q.Filter.Furnished)
}

func TestParsePropertyQueryRejectsBadPrices(t *testing.T) {
	for _, bad := range []url.Values{
		{"minPrice": {"cheap"}},
		{"maxPrice": {"NaN"}},
		{"maxPrice": {"-5"}},
		{"minPrice": {"500"}, "maxPrice": {"100"}},
	} {
		_, err := ParsePropertyQuery(bad)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "%v", bad)
	}
}

func TestParsePropertyQueryRejectsUnknownEnum(t *testing.T) {
	_, err := ParsePropertyQuery(url.Values{"type": {"castle"}})
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Fields, "type")
}

func TestParseCityFacetQuery(t *testing.T) {
	f, err := ParseCityFacetQuery(url.Values{"bhk": {"5+ BHK"}, "listingType": {"buy"}})
	require.NoError(t, err)
	require.NotNil(t, f.BHK)
	assert.Equal(t, 5, *f.BHK)
	assert.True(t, f.BHKAtLeast)
	assert.Equal(t, models.ListingTypeBuy, f.ListingType)
	assert.Equal(t, "5+ BHK", f.Raw["bhk"])

	f, err = ParseCityFacetQuery(url.Values{"bhk": {"2 BHK"}})
	require.NoError(t, err)
	assert.Equal(t, 2, *f.BHK)
	assert.False(t, f.BHKAtLeast)

	f, err = ParseCityFacetQuery(url.Values{"bhk": {"studio"}})
	require.NoError(t, err)
	assert.Nil(t, f.BHK)

	_, err = ParseCityFacetQuery(url.Values{"propertyType": {"igloo"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestFacetCacheKeyIsStable(t *testing.T) {
	a, err := ParseCityFacetQuery(url.Values{"bhk": {"3 BHK"}, "propertyType": {"house"}})
	require.NoError(t, err)
	b, err := ParseCityFacetQuery(url.Values{"propertyType": {"HOUSE"}, "bhk": {"3"}})
	require.NoError(t, err)

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "type=HOUSE|listing=|bhk=3", a.CacheKey())
}
