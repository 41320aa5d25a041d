package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reshape/internal/models"
)

func TestRelations_ColumnsExist(t *testing.T) {
	tests := []struct {
		name      string
		tables    []models.Table
		relations []Relation
	}{
		{"normalized", models.NewTableSet().Tables(), NormalizedRelations},
		{"star", (&models.StarSchema{}).Tables(), StarRelations},
		{"snowflake", (&models.SnowflakeSchema{}).Tables(), SnowflakeRelations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns := make(map[string][]string, len(tt.tables))
			for _, table := range tt.tables {
				columns[table.Name] = table.Columns()
			}

			for _, rel := range tt.relations {
				require.Contains(t, columns, rel.Table)
				require.Contains(t, columns, rel.Target)
				assert.Contains(t, columns[rel.Table], rel.Column, "%s.%s", rel.Table, rel.Column)
				assert.Contains(t, columns[rel.Target], rel.TargetColumn, "%s.%s", rel.Target, rel.TargetColumn)
				assert.NotEqual(t, rel.Table, rel.Target, "%s references itself", rel.Table)
			}
		})
	}
}

func TestStarSchema_LocationTable(t *testing.T) {
	schema := &models.StarSchema{DimLocation: []models.StarDimLocation{{LocationID: 1}, {LocationID: 2}}}

	var found bool
	for _, table := range schema.Tables() {
		if table.Name == models.StarDimLocations {
			found = true
			assert.Equal(t, 2, table.Len())
		}
	}

	assert.True(t, found)
}
