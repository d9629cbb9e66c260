package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/search"
	"github.com/propsnap/propsnap/internal/service"
	"github.com/propsnap/propsnap/internal/testutil"
)

func TestPropertiesEmptyCityListsEverything(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	mumbai := testutil.CreateCity(t, env.db, "Mumbai", "Maharashtra")
	pune := testutil.CreateCity(t, env.db, "Pune", "Maharashtra")
	testutil.CreateProperty(t, env.db, owner, mumbai, "1 Marine Drive")
	testutil.CreateProperty(t, env.db, owner, pune, "1 FC Road")

	for _, raw := range []string{"city=", "city=undefined", ""} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)
		q, err := search.ParsePropertyQuery(values)
		require.NoError(t, err)

		res, err := env.svc.Query.Properties(ctx, q, "")
		require.NoError(t, err)
		assert.False(t, res.Single())
		assert.Len(t, res.Properties, 2, raw)
	}

	q, err := search.ParsePropertyQuery(url.Values{"city": {"PUNE"}})
	require.NoError(t, err)
	res, err := env.svc.Query.Properties(ctx, q, "")
	require.NoError(t, err)
	require.Len(t, res.Properties, 1)
	assert.Equal(t, "1 FC Road", res.Properties[0].Address)
}

func TestPropertiesSingleModes(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	city := testutil.CreateCity(t, env.db, "Mumbai", "Maharashtra")
	p := testutil.CreateProperty(t, env.db, owner, city, "1 Marine Drive")

	res, err := env.svc.Query.Properties(ctx, search.PropertyQuery{Mode: search.ModeByID, ID: p.ID}, "")
	require.NoError(t, err)
	assert.True(t, res.Single())
	require.NotNil(t, res.Property)
	assert.Equal(t, p.ID, res.Property.ID)

	res, err = env.svc.Query.Properties(ctx, search.PropertyQuery{Mode: search.ModeByID, ID: "3c0f9c57-6f43-4bb1-9b0e-51f0a4f3e2d1"}, "")
	require.NoError(t, err)
	assert.Nil(t, res.Property)

	res, err = env.svc.Query.Properties(ctx, search.PropertyQuery{Mode: search.ModeDetail, PropertyID: p.ID}, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Property)
	require.NotNil(t, res.Property.ListedBy)
	assert.Equal(t, owner.Email, res.Property.ListedBy.Email)
}

func TestCitiesCountsAndCaches(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	mumbai := testutil.CreateCity(t, env.db, "Mumbai", "Maharashtra")
	pune := testutil.CreateCity(t, env.db, "Pune", "Maharashtra")
	testutil.CreateProperty(t, env.db, owner, mumbai, "1 Marine Drive", testutil.WithType(models.PropertyTypeVilla))
	testutil.CreateProperty(t, env.db, owner, mumbai, "2 Marine Drive", testutil.WithType(models.PropertyTypeVilla))
	testutil.CreateProperty(t, env.db, owner, pune, "1 FC Road", testutil.WithType(models.PropertyTypeVilla))
	testutil.CreateProperty(t, env.db, owner, pune, "2 FC Road")

	f, err := search.ParseCityFacetQuery(url.Values{"propertyType": {"villa"}})
	require.NoError(t, err)

	res, err := env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	require.Len(t, res.Cities, 2)
	assert.Equal(t, 2, res.TotalCities)
	assert.Equal(t, "Mumbai", res.Cities[0].Name)
	assert.EqualValues(t, 2, res.Cities[0].PropertyCount)
	assert.EqualValues(t, 1, res.Cities[1].PropertyCount)
	assert.Equal(t, "villa", res.Filters["propertyType"])
	assert.Len(t, res.Sample, 3)

	require.NoError(t, env.db.Where("1 = 1").Delete(&models.Property{}).Error)

	cached, err := env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, res.Cities, cached.Cities, "served from cache")

	other, err := search.ParseCityFacetQuery(url.Values{"bhk": {"2 BHK"}})
	require.NoError(t, err)
	fresh, err := env.svc.Query.Cities(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, fresh.Cities)
}

func TestCitiesCacheEvictedByListingWrites(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")

	f, err := search.ParseCityFacetQuery(url.Values{})
	require.NoError(t, err)

	res, err := env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, res.Cities)

	p, err := env.svc.Properties.Register(ctx, owner.ID, listing("1 Marine Drive"), nil)
	require.NoError(t, err)
	res, err = env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	require.Len(t, res.Cities, 1)
	assert.EqualValues(t, 1, res.Cities[0].PropertyCount)

	available := false
	_, err = env.svc.Properties.Update(ctx, owner.ID, p.ID, service.PropertyPatch{Available: &available}, service.ImageUpdate{})
	require.NoError(t, err)
	res, err = env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, res.Cities)

	q, err := env.svc.Properties.Register(ctx, owner.ID, listing("2 Marine Drive"), nil)
	require.NoError(t, err)
	res, err = env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	require.Len(t, res.Cities, 1)

	require.NoError(t, env.svc.Properties.Delete(ctx, owner.ID, q.ID))
	res, err = env.svc.Query.Cities(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, res.Cities)
}
