package snowflake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reshape/internal/calendar"
	"reshape/internal/fixtures"
	"reshape/internal/integrity"
	"reshape/internal/models"
	"reshape/internal/normalizer"
)

func normalized(t *testing.T) *models.TableSet {
	t.Helper()

	ts, err := normalizer.NewProcessor(normalizer.WithSeed(7), normalizer.WithClock(fixtures.Clock)).Process(fixtures.Raw())
	require.NoError(t, err)

	return ts
}

func project(t *testing.T, parallel bool) *models.SnowflakeSchema {
	t.Helper()

	dates, err := calendar.NewBuilder().Build(2025, 2026)
	require.NoError(t, err)

	schema, err := NewProjector(parallel, nil).Project(context.Background(), normalized(t), dates)
	require.NoError(t, err)

	return schema
}

func TestProject_Dimensions(t *testing.T) {
	schema := project(t, false)

	require.Len(t, schema.DimRoles, 2)
	assert.Equal(t, "admin", schema.DimRoles[0].RoleName)
	assert.Equal(t, "Administrator", schema.DimRoles[0].RoleDescription)
	assert.Equal(t, models.DefaultRole, schema.DimRoles[1].RoleName)
	assert.Equal(t, "Regular user", schema.DimRoles[1].RoleDescription)

	require.Len(t, schema.DimStates, 2)
	assert.Equal(t, "MS", schema.DimStates[0].StateCode)
	assert.Equal(t, "Southeast", schema.DimStates[0].Region)
	assert.Equal(t, "Midwest", schema.DimStates[1].Region)

	require.Len(t, schema.DimCities, 2)
	assert.Equal(t, "Phoenix", schema.DimCities[0].CityName)
	assert.Equal(t, schema.DimStates[0].StateID, schema.DimCities[0].StateID)
	assert.Equal(t, schema.DimStates[1].StateID, schema.DimCities[1].StateID)

	require.Len(t, schema.DimCategories, 1)
	assert.Equal(t, "smartphones", schema.DimCategories[0].CategorySlug)

	require.Len(t, schema.DimBrands, 2)
	assert.Equal(t, "Apple", schema.DimBrands[0].BrandName)
	assert.Equal(t, "Samsung", schema.DimBrands[1].BrandName)
}

func TestProject_UserAndProductReferences(t *testing.T) {
	schema := project(t, false)

	emily := schema.DimUsers[0]
	require.NotNil(t, emily.RoleID)
	require.NotNil(t, emily.CityID)
	assert.Equal(t, 1, *emily.RoleID)
	assert.Equal(t, 1, *emily.CityID)
	assert.Equal(t, "29112", emily.PostalCode)

	michael := schema.DimUsers[1]
	require.NotNil(t, michael.RoleID)
	assert.Equal(t, 2, *michael.RoleID)
	assert.Nil(t, michael.CityID)

	for _, p := range schema.DimProducts {
		require.NotNil(t, p.CategoryID)
		assert.Equal(t, 1, *p.CategoryID)
	}

	assert.Equal(t, 2, *schema.DimProducts[1].BrandID)
}

func TestProject_UnknownRoleDescription(t *testing.T) {
	ts := normalized(t)
	ts.Users[1].Role = "auditor"

	schema, err := NewProjector(false, nil).Project(context.Background(), ts, nil)
	require.NoError(t, err)

	assert.Equal(t, "User role", schema.DimRoles[1].RoleDescription)
}

func TestProject_CityWithoutStateDropped(t *testing.T) {
	ts := normalized(t)
	ts.Addresses[1].StateCode = ""

	schema, err := NewProjector(false, nil).Project(context.Background(), ts, nil)
	require.NoError(t, err)

	assert.Len(t, schema.DimStates, 1)
	require.Len(t, schema.DimCities, 1)
	assert.Equal(t, "Phoenix", schema.DimCities[0].CityName)
}

func TestProject_ParallelMatchesSequential(t *testing.T) {
	sequential := project(t, false)

	for range 20 {
		assert.Equal(t, sequential, project(t, true))
	}
}

func TestProject_Facts(t *testing.T) {
	schema := project(t, true)

	require.Len(t, schema.FactOrders, 3)
	assert.InDelta(t, 27.0, schema.FactOrders[0].TotalAmount, 1e-9)
	assert.InDelta(t, 11.0, schema.FactOrders[1].TotalAmount, 1e-9)

	for i, f := range schema.FactOrders {
		assert.Equal(t, i+1, f.FactID)
	}
}

func TestProject_ReferentialClosure(t *testing.T) {
	schema := project(t, true)

	report := integrity.NewChecker(false).Check(models.LayoutSnowflake, schema.Tables(), integrity.SnowflakeRelations)

	assert.True(t, report.Passed(), "errors: %v", report.Err())
	assert.Equal(t, 2, report.Counts[models.SnowDimCities])
}

func TestProject_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{false, true} {
		_, err := NewProjector(parallel, nil).Project(ctx, normalized(t), nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
}
