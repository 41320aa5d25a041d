package fixtures_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reshape/internal/fixtures"
	"reshape/internal/normalizer"
)

func TestScale(t *testing.T) {
	src := fixtures.Raw()
	scaled := fixtures.Scale(src, 5, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, scaled.Users, 5)
	require.Len(t, scaled.Products, 5)
	require.Len(t, scaled.Carts, 5)

	usernames := make(map[string]bool)
	for i, u := range scaled.Users {
		require.NotNil(t, u.ID)
		assert.Equal(t, fixtures.ScaleBaseID+i, *u.ID)
		assert.False(t, usernames[u.Username], "duplicate username %s", u.Username)
		usernames[u.Username] = true
	}

	assert.Equal(t, src.Users[0].FirstName, scaled.Users[2].FirstName)
	assert.Equal(t, "emilys_10000", scaled.Users[0].Username)
	assert.Equal(t, "test_user_10001@example.com", scaled.Users[1].Email)
	assert.Equal(t, src.Products[0].Title+" v2", scaled.Products[2].Title)
	assert.Equal(t, "SKU-010004", scaled.Products[4].SKU)

	for _, c := range scaled.Carts {
		require.NotNil(t, c.UserID)
		assert.GreaterOrEqual(t, *c.UserID, fixtures.ScaleBaseID)
		assert.Less(t, *c.UserID, fixtures.ScaleBaseID+5)
	}

	// the source is left untouched
	assert.Equal(t, fixtures.Raw(), src)
}

func TestScale_ReferencesResolve(t *testing.T) {
	scaled := fixtures.Scale(fixtures.Raw(), 7, rand.New(rand.NewPCG(3, 4)))

	ts, err := normalizer.NewProcessor(normalizer.WithSeed(1), normalizer.WithClock(fixtures.Clock)).Process(scaled)
	require.NoError(t, err)

	assert.Len(t, ts.Users, 7)
	assert.Len(t, ts.Orders, 7)
	assert.Empty(t, ts.Unresolved)
	assert.Empty(t, ts.Issues)
}

func TestScale_AbsentSourcesStayAbsent(t *testing.T) {
	src := fixtures.Raw()
	src.Carts = nil

	scaled := fixtures.Scale(src, 3, rand.New(rand.NewPCG(1, 1)))
	assert.Nil(t, scaled.Carts)
	assert.Len(t, scaled.Users, 3)
}
