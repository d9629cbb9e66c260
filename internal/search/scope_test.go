package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/search"
	"github.com/propsnap/propsnap/internal/testutil"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestPropertyFilterScope(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	pune := testutil.CreateCity(t, db, "Pune", "Maharashtra")
	mumbai := testutil.CreateCity(t, db, "Mumbai", "Maharashtra")

	testutil.CreateProperty(t, db, owner, pune, "1 FC Road", testutil.WithBHK(2), testutil.WithPrice(20000))
	testutil.CreateProperty(t, db, owner, pune, "2 FC Road", testutil.WithBHK(3), testutil.WithPrice(40000), testutil.WithFurnished(true))
	testutil.CreateProperty(t, db, owner, mumbai, "3 Marine Drive", testutil.WithBHK(3), testutil.WithType(models.PropertyTypeVilla))

	count := func(f search.PropertyFilter) int64 {
		var n int64
		require.NoError(t, db.Model(&models.Property{}).Scopes(f.Scope()).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(2), count(search.PropertyFilter{City: "pUNE"}))
	assert.Equal(t, int64(3), count(search.PropertyFilter{State: "Maharashtra"}))
	assert.Equal(t, int64(2), count(search.PropertyFilter{BHK: intPtr(3)}))
	assert.Equal(t, int64(1), count(search.PropertyFilter{City: "Pune", MinPrice: floatPtr(30000)}))
	assert.Equal(t, int64(1), count(search.PropertyFilter{MaxPrice: floatPtr(20000)}))
	assert.Equal(t, int64(1), count(search.PropertyFilter{Type: models.PropertyTypeVilla}))

	furnished := true
	assert.Equal(t, int64(1), count(search.PropertyFilter{Furnished: &furnished}))
	assert.Equal(t, int64(0), count(search.PropertyFilter{City: "Delhi"}))
}

func TestFacetPredicate(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner")
	city := testutil.CreateCity(t, db, "Goa", "Goa")

	testutil.CreateProperty(t, db, owner, city, "a", testutil.WithBHK(5))
	testutil.CreateProperty(t, db, owner, city, "b", testutil.WithBHK(6))
	testutil.CreateProperty(t, db, owner, city, "c", testutil.WithBHK(2))
	testutil.CreateProperty(t, db, owner, city, "d", testutil.WithBHK(7), testutil.WithAvailable(false))

	count := func(f search.FacetFilter) int64 {
		var n int64
		require.NoError(t, db.Model(&models.Property{}).Scopes(search.FacetPredicate(f)).Count(&n).Error)
		return n
	}

	assert.Equal(t, int64(3), count(search.FacetFilter{}), "unavailable listings never match")
	assert.Equal(t, int64(2), count(search.FacetFilter{BHK: intPtr(5), BHKAtLeast: true}))
	assert.Equal(t, int64(1), count(search.FacetFilter{BHK: intPtr(2)}))
	assert.Equal(t, int64(3), count(search.FacetFilter{ListingType: models.ListingTypeRent}))
	assert.Equal(t, int64(0), count(search.FacetFilter{ListingType: models.ListingTypeBuy}))
}
