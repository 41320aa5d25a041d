// Package snowflake projects normalized tables into a snowflake schema, where user
// location, role, product category and brand are split into their own dimensions.
package snowflake

import (
	"context"

	"golang.org/x/sync/errgroup"

	"reshape/internal/calendar"
	"reshape/internal/dimension"
	"reshape/internal/keys"
	"reshape/internal/logger"
	"reshape/internal/models"
	"reshape/pkg/utils"
)

var roleDescriptions = map[string]string{
	"user":      "Regular user",
	"admin":     "Administrator",
	"moderator": "Content moderator",
	"guest":     "Guest user",
}

const defaultRoleDescription = "User role"

type cityKey struct {
	Name    string
	StateID int
}

// Projector builds snowflake schemas.
type Projector struct {
	log      *logger.Logger
	parallel bool
}

// NewProjector creates a projector. With parallel set, passes whose inputs are
// independent run concurrently; the output is the same either way.
func NewProjector(parallel bool, log *logger.Logger) *Projector {
	if log == nil {
		log = logger.Discard()
	}

	return &Projector{parallel: parallel, log: log}
}

// lookups are the natural-key indexes each pass publishes for the passes after it.
type lookups struct {
	roles      map[string]int
	states     map[string]int
	cities     map[cityKey]int
	categories map[string]int
	brands     map[string]int
}

// Project derives the snowflake schema from ts. Passes run in waves:
// roles, states, categories and brands; then cities; then users and products; then facts.
func (p *Projector) Project(ctx context.Context, ts *models.TableSet, dates []models.DateRow) (*models.SnowflakeSchema, error) {
	schema := &models.SnowflakeSchema{DimDate: dates}
	idx := lookups{}

	err := p.wave(ctx,
		func() { schema.DimRoles, idx.roles = buildRoles(ts) },
		func() { schema.DimStates, idx.states = buildStates(ts) },
		func() { schema.DimCategories, idx.categories = buildCategories(ts) },
		func() { schema.DimBrands, idx.brands = buildBrands(ts) },
	)
	if err != nil {
		return nil, err
	}

	err = p.wave(ctx,
		func() { schema.DimCities, idx.cities = buildCities(ts, idx.states) },
	)
	if err != nil {
		return nil, err
	}

	err = p.wave(ctx,
		func() { schema.DimUsers = buildUsers(ts, idx) },
		func() { schema.DimProducts = buildProducts(ts, idx) },
	)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema.FactOrders = p.buildFacts(ts, calendar.NewIndex(dates))

	p.log.Info("projected snowflake schema",
		"roles", len(schema.DimRoles),
		"states", len(schema.DimStates),
		"cities", len(schema.DimCities),
		"categories", len(schema.DimCategories),
		"brands", len(schema.DimBrands),
		"fact_orders", len(schema.FactOrders),
	)

	return schema, nil
}

// wave runs passes and returns once all of them are done.
func (p *Projector) wave(ctx context.Context, passes ...func()) error {
	if !p.parallel {
		for _, pass := range passes {
			if err := ctx.Err(); err != nil {
				return err
			}

			pass()
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, pass := range passes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			pass()

			return nil
		})
	}

	return g.Wait()
}

func buildRoles(ts *models.TableSet) ([]models.SnowDimRole, map[string]int) {
	alloc := keys.New()
	rows := []models.SnowDimRole{}
	index := make(map[string]int)

	for i := range ts.Users {
		role := utils.FirstNonEmpty(ts.Users[i].Role, models.DefaultRole)
		index[role] = alloc.GetOrCreate("role", role, func(id int) {
			desc, ok := roleDescriptions[role]
			if !ok {
				desc = defaultRoleDescription
			}

			rows = append(rows, models.SnowDimRole{RoleID: id, RoleName: role, RoleDescription: desc})
		})
	}

	return rows, index
}

func buildStates(ts *models.TableSet) ([]models.SnowDimState, map[string]int) {
	alloc := keys.New()
	rows := []models.SnowDimState{}
	index := make(map[string]int)

	for i := range ts.Addresses {
		a := &ts.Addresses[i]
		if a.StateCode == "" {
			continue
		}

		index[a.StateCode] = alloc.GetOrCreate("state", a.StateCode, func(id int) {
			rows = append(rows, models.SnowDimState{
				StateID:   id,
				StateName: a.State,
				StateCode: a.StateCode,
				Region:    dimension.Region(a.StateCode),
				Country:   models.DefaultCountry,
			})
		})
	}

	return rows, index
}

// buildCities drops cities whose state code has no state row.
func buildCities(ts *models.TableSet, states map[string]int) ([]models.SnowDimCity, map[cityKey]int) {
	alloc := keys.New()
	rows := []models.SnowDimCity{}
	index := make(map[cityKey]int)

	for i := range ts.Addresses {
		a := &ts.Addresses[i]

		stateID, ok := states[a.StateCode]
		if !ok || a.City == "" {
			continue
		}

		key := cityKey{Name: a.City, StateID: stateID}
		index[key] = alloc.GetOrCreate("city", key, func(id int) {
			rows = append(rows, models.SnowDimCity{CityID: id, CityName: a.City, StateID: stateID})
		})
	}

	return rows, index
}

func buildCategories(ts *models.TableSet) ([]models.SnowDimCategory, map[string]int) {
	alloc := keys.New()
	rows := []models.SnowDimCategory{}
	index := make(map[string]int)

	for i := range ts.Categories {
		c := &ts.Categories[i]
		index[c.Slug] = alloc.GetOrCreate("category", c.Slug, func(id int) {
			rows = append(rows, models.SnowDimCategory{CategoryID: id, CategoryName: c.Name, CategorySlug: c.Slug})
		})
	}

	return rows, index
}

func buildBrands(ts *models.TableSet) ([]models.SnowDimBrand, map[string]int) {
	alloc := keys.New()
	rows := []models.SnowDimBrand{}
	index := make(map[string]int)

	for i := range ts.Products {
		brand := ts.Products[i].Brand
		if brand == "" {
			continue
		}

		index[brand] = alloc.GetOrCreate("brand", brand, func(id int) {
			rows = append(rows, models.SnowDimBrand{BrandID: id, BrandName: brand})
		})
	}

	return rows, index
}

func buildUsers(ts *models.TableSet, idx lookups) []models.SnowDimUser {
	addresses := ts.AddressByID()

	rows := make([]models.SnowDimUser, 0, len(ts.Users))
	for i := range ts.Users {
		u := &ts.Users[i]
		row := models.SnowDimUser{
			UserID:     u.ID,
			Username:   u.Username,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			FullName:   u.FullName(),
			Age:        u.Age,
			Gender:     u.Gender,
			Phone:      u.Phone,
			BirthDate:  u.BirthDate,
			BloodGroup: u.BloodGroup,
			University: u.University,
		}

		if id, ok := idx.roles[utils.FirstNonEmpty(u.Role, models.DefaultRole)]; ok {
			row.RoleID = &id
		}

		if u.AddressID != nil {
			if a, ok := addresses[*u.AddressID]; ok {
				row.PostalCode = a.PostalCode
				row.Latitude = a.Latitude
				row.Longitude = a.Longitude

				if stateID, ok := idx.states[a.StateCode]; ok {
					if cityID, ok := idx.cities[cityKey{Name: a.City, StateID: stateID}]; ok {
						row.CityID = &cityID
					}
				}
			}
		}

		rows = append(rows, row)
	}

	return rows
}

func buildProducts(ts *models.TableSet, idx lookups) []models.SnowDimProduct {
	categories := ts.CategoryByID()

	rows := make([]models.SnowDimProduct, 0, len(ts.Products))
	for i := range ts.Products {
		pr := &ts.Products[i]
		row := models.SnowDimProduct{
			ProductID:          pr.ID,
			Title:              pr.Title,
			Description:        pr.Description,
			SKU:                pr.SKU,
			Price:              pr.Price,
			DiscountPercentage: pr.DiscountPercentage,
			Rating:             pr.Rating,
			Stock:              pr.Stock,
			Weight:             pr.Weight,
			WarrantyInfo:       pr.WarrantyInfo,
			AvailabilityStatus: pr.AvailabilityStatus,
		}

		if pr.CategoryID != nil {
			if c, ok := categories[*pr.CategoryID]; ok {
				if id, ok := idx.categories[c.Slug]; ok {
					row.CategoryID = &id
				}
			}
		}

		if id, ok := idx.brands[pr.Brand]; ok {
			row.BrandID = &id
		}

		rows = append(rows, row)
	}

	return rows
}

func (p *Projector) buildFacts(ts *models.TableSet, dates *calendar.Index) []models.SnowFactOrder {
	alloc := keys.New()
	orders := ts.OrderByID()

	rows := make([]models.SnowFactOrder, 0, len(ts.OrderItems))
	for i := range ts.OrderItems {
		item := &ts.OrderItems[i]

		order, ok := orders[item.OrderID]
		if !ok {
			continue
		}

		dateID, inRange := dates.DateID(order.OrderDate)
		if !inRange {
			p.log.Warn("order date outside calendar, using fallback date_id",
				"order_id", order.ID, "date_id", dateID)
		}

		amounts := dimension.LineAmounts(item)
		rows = append(rows, models.SnowFactOrder{
			FactID:             alloc.Allocate("fact"),
			OrderID:            order.ID,
			UserID:             order.UserID,
			ProductID:          item.ProductID,
			DateID:             dateID,
			Quantity:           item.Quantity,
			UnitPrice:          amounts.UnitPrice,
			DiscountPercentage: amounts.DiscountPercentage,
			DiscountAmount:     amounts.DiscountAmount,
			Subtotal:           amounts.Subtotal,
			TotalAmount:        amounts.TotalAmount,
			OrderStatus:        dimension.Status(order),
		})
	}

	return rows
}
