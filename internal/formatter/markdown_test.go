package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"reshape/internal/integrity"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Trim spaces in cells",
			input: `
|   Col A   |   Col B   |
| --- | --- |
|   val A   |   val B   |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| val A | val B |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Mixed CJK and ASCII",
			input: `
| City | Note |
| --- | --- |
| 東京 | 全角：テスト。 |
| Phoenix | Short text |
`,
			expected: `
| City    | Note           |
| ------- | -------------- |
| 東京    | 全角：テスト。 |
| Phoenix | Short text     |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(strings.TrimSpace(tt.input))

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("Align() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func TestTable(t *testing.T) {
	got := Table([]string{"Table", "Rows"}, [][]string{
		{"users", "2"},
		{"a|b", "10"},
	})

	want := `| Table | Rows |
| ----- | ---- |
| users | 2    |
| a\|b  | 10   |`

	assert.Equal(t, want, got)
}

func TestReport(t *testing.T) {
	passed := integrity.NewReport("star")
	passed.Counts["star_fact_orders"] = 3

	failed := integrity.NewReport("normalized")
	failed.Counts["orders"] = 2
	failed.Counts["addresses"] = 1

	for i := range 3 {
		failed.AddError(&integrity.ReferentialIntegrityError{Table: "orders", Column: "user_id", Target: "users", Value: 90 + i, RowID: i + 1})
	}

	failed.AddWarning(&integrity.FieldWarning{Table: "users", Field: "age", Message: "age 150 outside 0..120", RowID: 1})

	got := Report([]*integrity.Report{failed, passed}, 2)

	assert.Contains(t, got, "## normalized: FAILED")
	assert.Contains(t, got, "## star: PASSED")
	assert.Contains(t, got, "### Errors (3)")
	assert.Contains(t, got, "- [referential_integrity] orders[1].user_id = 90 not found in users")
	assert.NotContains(t, got, "= 92 not found")
	assert.Contains(t, got, "- ... and 1 more")
	assert.Contains(t, got, "- [field_warning] users[1].age: age 150 outside 0..120")
	assert.Less(t, strings.Index(got, "| addresses |"), strings.Index(got, "| orders    |"))
}

func TestReport_MultilineFinding(t *testing.T) {
	r := integrity.NewReport("relational/star")
	r.AddError(&integrity.LoadError{Store: "relational", Table: "star_fact_orders", Err: errors.New("constraint failed\n\tdetail:  key (user_id)")})

	got := Report([]*integrity.Report{r}, 0)

	assert.Contains(t, got, "- [load] load star_fact_orders into relational failed: constraint failed detail: key (user_id)\n")
}

func TestLoads(t *testing.T) {
	got := Loads(map[string]map[string]int{
		"relational": {"orders": 2, "addresses": 1},
		"cache":      {"users": 2},
	})

	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "| cache      | users     | 2    |", lines[2])
	assert.Equal(t, "| relational | addresses | 1    |", lines[3])
}
