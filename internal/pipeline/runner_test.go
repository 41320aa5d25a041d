package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reshape/internal/config"
	"reshape/internal/fixtures"
	"reshape/internal/models"
	"reshape/internal/store"
	"reshape/pkg/metadata"
)

type staticSource struct {
	raw *models.RawDataset
	err error
}

func (s staticSource) Fetch(context.Context) (*models.RawDataset, error) {
	return s.raw, s.err
}

type memoryWriter struct {
	collections map[string]int
}

func (w *memoryWriter) Replace(_ context.Context, collection string, docs []any) (int, error) {
	w.collections[collection] = len(docs)
	return len(docs), nil
}

func (w *memoryWriter) EnsureIndexes(context.Context, string, []string) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Pipeline.Output.BasePath = t.TempDir()
	cfg.Pipeline.Output.Formats = []string{"json", "csv"}
	cfg.Pipeline.Normalize.Seed = 7

	return cfg
}

func TestRunner_Run(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg, WithSource(staticSource{raw: fixtures.Raw()}), WithClock(fixtures.Clock))

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Passed)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Reports, 4)

	for _, layout := range []string{models.LayoutNormalized, models.LayoutStar, models.LayoutSnowflake, models.LayoutDocument} {
		rep := res.Report(layout)
		require.NotNil(t, rep, layout)
		assert.Empty(t, rep.Errors, layout)

		require.Contains(t, res.Exports, layout)

		m, err := metadata.Verify(filepath.Join(cfg.Pipeline.Output.BasePath, layout))
		require.NoError(t, err, layout)
		assert.Equal(t, res.RunID, m.RunID)
	}

	assert.Len(t, res.Star.FactOrders, 3)
	assert.Len(t, res.Snowflake.FactOrders, 3)
	assert.Len(t, res.Documents.Orders, 2)
	assert.Empty(t, res.Loads)
	assert.FileExists(t, filepath.Join(cfg.Pipeline.Output.BasePath, models.LayoutStar, "star_fact_orders.csv"))
}

// threeUserDataset has one fully nested user and two bare ones, two products in one
// category (the first with two tags and no reviews) and two carts.
const threeUserDataset = `{
  "users": [
    {
      "id": 1, "firstName": "Emily", "lastName": "Johnson", "age": 28,
      "email": "emily@example.com", "username": "emilys", "role": "admin",
      "address": {"address": "626 Main Street", "city": "Phoenix", "state": "Mississippi", "stateCode": "MS", "postalCode": "29112"},
      "bank": {"cardExpire": "03/26", "cardNumber": "9289760655481815", "cardType": "Elo", "currency": "CNY", "iban": "YPUXISOBI7TTHPK2BR3HAIXL"},
      "company": {
        "department": "Engineering", "name": "Dooley, Kozey and Cronin", "title": "Sales Manager",
        "address": {"address": "263 Tenth Street", "city": "San Francisco", "state": "Wisconsin", "stateCode": "WI", "postalCode": "37657"}
      }
    },
    {"id": 2, "firstName": "Michael", "lastName": "Williams", "email": "michael@example.com", "username": "michaelw"},
    {"id": 3, "firstName": "Sophia", "lastName": "Brown", "email": "sophia@example.com", "username": "sophiab"}
  ],
  "products": [
    {"id": 1, "title": "iPhone 9", "category": "Smartphones", "brand": "Apple", "price": 10.0, "discountPercentage": 10, "tags": ["phone", "apple"], "reviews": []},
    {"id": 2, "title": "Galaxy S", "category": "Smartphones", "brand": "Samsung", "price": 25.5}
  ],
  "carts": [
    {"id": 1, "userId": 1, "products": [
      {"id": 1, "title": "iPhone 9", "price": 10.0, "quantity": 3, "discountPercentage": 10},
      {"id": 2, "title": "Galaxy S", "price": 25.5, "quantity": 1}
    ]},
    {"id": 2, "userId": 2, "products": [
      {"id": 2, "title": "Galaxy S", "price": 25.5, "quantity": 2, "discountPercentage": 5}
    ]}
  ]
}`

func TestRunner_Run_ThreeUsers(t *testing.T) {
	var raw models.RawDataset
	require.NoError(t, json.Unmarshal([]byte(threeUserDataset), &raw))

	res, err := New(testConfig(t), WithSource(staticSource{raw: &raw}), WithClock(fixtures.Clock)).
		Run(context.Background())
	require.NoError(t, err)

	lines := 0
	for _, c := range raw.Carts {
		lines += len(c.Products)
	}

	counts := res.Tables.Counts()
	assert.Equal(t, 3, counts[models.TableUsers])
	assert.Equal(t, 1, counts[models.TableCategories])
	assert.Equal(t, 2, counts[models.TableProducts])
	assert.Equal(t, 2, counts[models.TableProductTags])
	assert.Equal(t, 0, counts[models.TableReviews])
	assert.Equal(t, 1, counts[models.TableBanks])
	assert.Equal(t, 1, counts[models.TableCompanies])
	// the user's address plus the company's address
	assert.Equal(t, 2, counts[models.TableAddresses])
	assert.Equal(t, 2, counts[models.TableOrders])
	assert.Equal(t, lines, counts[models.TableOrderItems])

	for _, rep := range res.Reports {
		assert.Empty(t, rep.Errors, rep.Layout)
	}

	assert.True(t, res.Passed)
	assert.Len(t, res.Star.FactOrders, lines)
	assert.Len(t, res.Snowflake.FactOrders, lines)
	assert.Len(t, res.Documents.Users, 3)

	first := res.Star.FactOrders[0]
	assert.InDelta(t, 30.0, first.Subtotal, 1e-9)
	assert.InDelta(t, 3.0, first.DiscountAmount, 1e-9)
	assert.InDelta(t, 27.0, first.TotalAmount, 1e-9)
}

func TestRunner_Run_Deterministic(t *testing.T) {
	run := func() *Result {
		res, err := New(testConfig(t), WithSource(staticSource{raw: fixtures.Raw()}), WithClock(fixtures.Clock)).
			Run(context.Background())
		require.NoError(t, err)

		return res
	}

	first, second := run(), run()

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Tables.Orders, second.Tables.Orders)
	assert.Equal(t, first.Star.FactOrders, second.Star.FactOrders)
	assert.Equal(t, first.Snowflake, second.Snowflake)
}

func TestRunner_Run_LoadsStores(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stores.Relational.Verify = true

	rel, err := store.OpenRelational("sqlite", filepath.Join(t.TempDir(), "reshape.db"), 100, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rel.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	writer := &memoryWriter{collections: make(map[string]int)}

	r := New(cfg,
		WithSource(staticSource{raw: fixtures.Raw()}),
		WithClock(fixtures.Clock),
		WithRelational(rel),
		WithDocuments(store.NewDocuments(writer, nil)),
		WithCache(store.NewCache(rdb, cfg.Stores.Redis.TTL.EntityTTL, nil)),
	)

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.LoadErrors)
	assert.True(t, res.Passed)

	relational := res.Loads[store.NameRelational]
	assert.Equal(t, len(res.Tables.OrderItems), relational[models.TableOrderItems])
	assert.Equal(t, len(res.Star.FactOrders), relational[models.StarFactOrders])
	assert.Equal(t, len(res.Snowflake.FactOrders), relational[models.SnowFactOrders])
	assert.Equal(t, len(res.Dates), relational[models.SnowDimDate])

	for _, layout := range cfg.RelationalLayouts() {
		rep := res.Report(VerifyLayout(layout))
		require.NotNil(t, rep, layout)
		assert.True(t, rep.Passed(), "%s: %v", layout, rep.Errors)
	}

	assert.Equal(t, 2, writer.collections[models.CollectionUsers])
	assert.Equal(t, 2, res.Loads[store.NameCache][models.CollectionOrders])
	assert.True(t, mr.Exists(store.Key(store.KeyOrder, res.Documents.Orders[0].ID)))
	assert.Equal(t, time.Hour, mr.TTL(store.Key(store.KeyUser, res.Documents.Users[0].ID)))

	path := filepath.Join(t.TempDir(), "reshape.prom")
	require.NoError(t, r.Metrics().WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `reshape_load_rows_total{store="cache",table="users"} 2`)
	assert.Contains(t, string(data), `reshape_stage_duration_seconds_count{stage="load"} 1`)
}

func TestRunner_Run_MissingSource(t *testing.T) {
	raw := fixtures.Raw()
	raw.Carts = nil

	res, err := New(testConfig(t), WithSource(staticSource{raw: raw}), WithClock(fixtures.Clock)).
		Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.NotEmpty(t, res.Report(models.LayoutNormalized).Warnings)
	assert.Empty(t, res.Star.FactOrders)

	strict := testConfig(t)
	strict.Pipeline.Validation.FailOnWarnings = true

	res, err = New(strict, WithSource(staticSource{raw: raw}), WithClock(fixtures.Clock)).
		Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Passed)
}

func TestRunner_Run_SourceError(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(testConfig(t), WithSource(staticSource{err: boom})).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(t), WithSource(staticSource{raw: fixtures.Raw()}), WithClock(fixtures.Clock)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildCalendar(t *testing.T) {
	ts := models.NewTableSet()
	ts.Orders = append(ts.Orders,
		models.Order{ID: 1, OrderDate: time.Date(2019, 12, 31, 8, 0, 0, 0, time.UTC)},
		models.Order{ID: 2, OrderDate: time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)},
	)

	rows, err := BuildCalendar(config.CalendarConfig{StartYear: 2020, EndYear: 2021, AutoExtend: true}, ts)
	require.NoError(t, err)
	assert.Len(t, rows, 365+366+365)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].FullDate)

	rows, err = BuildCalendar(config.CalendarConfig{StartYear: 2020, EndYear: 2021}, ts)
	require.NoError(t, err)
	assert.Len(t, rows, 731)
}

func TestConnect_NothingEnabled(t *testing.T) {
	s, err := Connect(context.Background(), &config.Default().Stores, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Options(nil))
	assert.NoError(t, s.Close())
}
