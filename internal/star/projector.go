// Package star projects normalized tables into a star schema: flat user, product,
// date and location dimensions around one order-line fact table.
package star

import (
	"reshape/internal/calendar"
	"reshape/internal/dimension"
	"reshape/internal/keys"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// LocationJoin selects how fact rows find their location.
type LocationJoin string

const (
	// JoinByAddressKey maps the user's address key straight to its location row.
	JoinByAddressKey LocationJoin = "address_key"
	// JoinByAttributes matches city, state code and postal code; the first matching
	// location wins when several addresses share them.
	JoinByAttributes LocationJoin = "attributes"
)

const (
	entityLocation = "location"
	entityFact     = "fact"
)

type locationKey struct {
	city, stateCode, postalCode string
}

// Projector builds star schemas.
type Projector struct {
	log  *logger.Logger
	join LocationJoin
}

// NewProjector creates a projector. An empty join defaults to JoinByAddressKey.
func NewProjector(join LocationJoin, log *logger.Logger) *Projector {
	if join == "" {
		join = JoinByAddressKey
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Projector{join: join, log: log}
}

// Project derives the star schema from ts. dates becomes star_dim_date and resolves
// fact date_id values. ts is not modified.
func (p *Projector) Project(ts *models.TableSet, dates []models.DateRow) *models.StarSchema {
	alloc := keys.New()

	schema := &models.StarSchema{
		DimUsers:    p.users(ts),
		DimProducts: p.products(ts),
		DimDate:     dates,
	}

	var locate func(*models.User) *int
	schema.DimLocation, locate = p.locations(ts, alloc)
	schema.FactOrders = p.facts(ts, alloc, calendar.NewIndex(dates), locate)

	p.log.Info("projected star schema",
		"dim_users", len(schema.DimUsers),
		"dim_products", len(schema.DimProducts),
		"dim_location", len(schema.DimLocation),
		"fact_orders", len(schema.FactOrders),
	)

	return schema
}

func (p *Projector) users(ts *models.TableSet) []models.StarDimUser {
	rows := make([]models.StarDimUser, 0, len(ts.Users))
	for i := range ts.Users {
		u := &ts.Users[i]
		rows = append(rows, models.StarDimUser{
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
			Role:       u.Role,
		})
	}

	return rows
}

func (p *Projector) products(ts *models.TableSet) []models.StarDimProduct {
	categories := ts.CategoryByID()

	rows := make([]models.StarDimProduct, 0, len(ts.Products))
	for i := range ts.Products {
		pr := &ts.Products[i]

		category := models.UnknownCategory
		if pr.CategoryID != nil {
			if c, ok := categories[*pr.CategoryID]; ok {
				category = c.Name
			}
		}

		rows = append(rows, models.StarDimProduct{
			ProductID:          pr.ID,
			Title:              pr.Title,
			Description:        pr.Description,
			Category:           category,
			Brand:              pr.Brand,
			SKU:                pr.SKU,
			Price:              pr.Price,
			DiscountPercentage: pr.DiscountPercentage,
			Rating:             pr.Rating,
			Stock:              pr.Stock,
			Weight:             pr.Weight,
			WarrantyInfo:       pr.WarrantyInfo,
			AvailabilityStatus: pr.AvailabilityStatus,
		})
	}

	return rows
}

// locations emits one row per address and returns the resolver for the configured join.
func (p *Projector) locations(ts *models.TableSet, alloc *keys.Allocator) ([]models.StarDimLocation, func(*models.User) *int) {
	rows := make([]models.StarDimLocation, 0, len(ts.Addresses))
	byAddress := make(map[int]int, len(ts.Addresses))
	byAttributes := make(map[locationKey]int, len(ts.Addresses))

	for i := range ts.Addresses {
		a := &ts.Addresses[i]
		id := alloc.Allocate(entityLocation)
		addressID := a.ID

		rows = append(rows, models.StarDimLocation{
			LocationID:  id,
			AddressID:   &addressID,
			AddressLine: a.AddressLine,
			City:        a.City,
			State:       a.State,
			StateCode:   a.StateCode,
			PostalCode:  a.PostalCode,
			Country:     a.Country,
			Region:      dimension.Region(a.StateCode),
			Latitude:    a.Latitude,
			Longitude:   a.Longitude,
		})

		byAddress[a.ID] = id

		key := locationKey{a.City, a.StateCode, a.PostalCode}
		if _, seen := byAttributes[key]; !seen {
			byAttributes[key] = id
		}
	}

	addresses := ts.AddressByID()

	locate := func(u *models.User) *int {
		if u == nil || u.AddressID == nil {
			return nil
		}

		if p.join == JoinByAttributes {
			a, ok := addresses[*u.AddressID]
			if !ok {
				return nil
			}

			if id, ok := byAttributes[locationKey{a.City, a.StateCode, a.PostalCode}]; ok {
				return &id
			}

			return nil
		}

		if id, ok := byAddress[*u.AddressID]; ok {
			return &id
		}

		return nil
	}

	return rows, locate
}

func (p *Projector) facts(ts *models.TableSet, alloc *keys.Allocator, dates *calendar.Index, locate func(*models.User) *int) []models.StarFactOrder {
	orders := ts.OrderByID()
	users := ts.UserByID()

	rows := make([]models.StarFactOrder, 0, len(ts.OrderItems))
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

		var user *models.User
		if order.UserID != nil {
			user = users[*order.UserID]
		}

		amounts := dimension.LineAmounts(item)
		rows = append(rows, models.StarFactOrder{
			FactID:             alloc.Allocate(entityFact),
			OrderID:            order.ID,
			UserID:             order.UserID,
			ProductID:          item.ProductID,
			DateID:             dateID,
			LocationID:         locate(user),
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
