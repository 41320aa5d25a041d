// Package fixtures provides a small raw dataset shaped like the upstream API, for tests
// and for the seed tool.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"reshape/internal/models"
)

//go:embed raw.json
var rawJSON []byte

// Now is the fixed clock used by tests that generate order dates.
var Now = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

// Raw returns a fresh copy of the sample dataset: two users (one with address, bank and
// company, one without), two products whose categories differ only in case, and two carts.
func Raw() *models.RawDataset {
	var ds models.RawDataset
	if err := json.Unmarshal(rawJSON, &ds); err != nil {
		panic(fmt.Sprintf("fixtures: invalid raw.json: %v", err))
	}

	return &ds
}

// Clock returns Now.
func Clock() time.Time {
	return Now
}
