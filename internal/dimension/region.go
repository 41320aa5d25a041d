// Package dimension holds rules shared by the star and snowflake projections:
// the region lookup and fact-line arithmetic.
package dimension

import (
	"strings"

	"reshape/internal/models"
)

var regions = map[string][]string{
	"Northeast": {"NY", "PA", "NJ", "MA", "CT", "RI", "VT", "NH", "ME"},
	"Southeast": {"FL", "GA", "SC", "NC", "VA", "WV", "KY", "TN", "AL", "MS", "AR", "LA"},
	"Midwest":   {"OH", "MI", "IN", "IL", "WI", "MN", "IA", "MO", "ND", "SD", "NE", "KS"},
	"Southwest": {"TX", "OK", "NM", "AZ"},
	"West":      {"CA", "NV", "UT", "CO", "WY", "MT", "ID", "WA", "OR", "AK", "HI"},
}

var regionByState = func() map[string]string {
	index := make(map[string]string)
	for region, codes := range regions {
		for _, code := range codes {
			index[code] = region
		}
	}

	return index
}()

// Region returns the US region for a two-letter state code, or "Other".
func Region(stateCode string) string {
	if region, ok := regionByState[strings.ToUpper(strings.TrimSpace(stateCode))]; ok {
		return region
	}

	return models.DefaultRegion
}
