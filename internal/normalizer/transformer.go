package normalizer

import (
	"math/rand/v2"
	"time"

	"reshape/internal/keys"
	"reshape/internal/models"
	"reshape/pkg/utils"
)

// Entity names used with the key allocator.
const (
	EntityAddress  = "address"
	EntityBank     = "bank"
	EntityCompany  = "company"
	EntityCategory = "category"
	EntityUser     = "user"
	EntityProduct  = "product"
	EntityTag      = "product_tag"
	EntityImage    = "product_image"
	EntityReview   = "review"
	EntityOrder    = "order"
	EntityItem     = "order_item"
)

// Order statuses drawn for synthetic orders.
var orderStatuses = []string{"completed", "pending", "shipped", "delivered"}

// Transformer converts raw collections into normalized tables.
type Transformer struct {
	now func() time.Time
	rng *rand.Rand
}

// NewTransformer creates a new transformer instance.
func NewTransformer(now func() time.Time, rng *rand.Rand) *Transformer {
	return &Transformer{now: now, rng: rng}
}

// Transform runs users, then products, then carts, so every foreign key it writes
// points at a row that already exists.
func (t *Transformer) Transform(raw *models.RawDataset, alloc *keys.Allocator) *models.TableSet {
	ts := models.NewTableSet()

	for i := range raw.Users {
		t.user(ts, alloc, &raw.Users[i])
	}

	for i := range raw.Products {
		t.product(ts, alloc, &raw.Products[i])
	}

	for i := range raw.Carts {
		t.cart(ts, alloc, &raw.Carts[i])
	}

	return ts
}

func (t *Transformer) user(ts *models.TableSet, alloc *keys.Allocator, u *models.RawUser) {
	if u.ID == nil {
		return
	}

	alloc.GetOrCreate(EntityUser, *u.ID, func(id int) {
		row := models.User{
			ID:         id,
			SourceID:   *u.ID,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			MaidenName: u.MaidenName,
			Age:        u.Age,
			Gender:     u.Gender,
			Email:      u.Email,
			Phone:      u.Phone,
			Username:   u.Username,
			Password:   u.Password,
			BirthDate:  u.BirthDate,
			ImageURL:   u.Image,
			BloodGroup: u.BloodGroup,
			Height:     u.Height,
			Weight:     u.Weight,
			EyeColor:   u.EyeColor,
			IPAddress:  u.IP,
			MACAddress: u.MACAddress,
			UserAgent:  u.UserAgent,
			University: u.University,
			EIN:        u.EIN,
			SSN:        u.SSN,
			Role:       u.RoleOrDefault(),
		}

		if u.Hair != nil {
			row.HairColor = u.Hair.Color
			row.HairType = u.Hair.Type
		}

		if u.Crypto != nil {
			row.CryptoCoin = u.Crypto.Coin
			row.CryptoWallet = u.Crypto.Wallet
			row.CryptoNetwork = u.Crypto.Network
		}

		if u.Address != nil {
			row.AddressID = ptr(t.address(ts, alloc, u.Address))
		}

		if u.Bank != nil {
			bankID := alloc.Allocate(EntityBank)
			ts.Banks = append(ts.Banks, models.Bank{
				ID:         bankID,
				CardNumber: u.Bank.CardNumber,
				CardType:   u.Bank.CardType,
				CardExpire: u.Bank.CardExpire,
				Currency:   u.Bank.Currency,
				IBAN:       u.Bank.IBAN,
			})
			row.BankID = ptr(bankID)
		}

		if u.Company != nil {
			company := models.Company{
				ID:         alloc.Allocate(EntityCompany),
				Name:       u.Company.Name,
				Department: u.Company.Department,
				Title:      u.Company.Title,
			}

			if u.Company.Address != nil {
				company.AddressID = ptr(t.address(ts, alloc, u.Company.Address))
			}

			ts.Companies = append(ts.Companies, company)
			row.CompanyID = ptr(company.ID)
		}

		ts.Users = append(ts.Users, row)
	})
}

func (t *Transformer) address(ts *models.TableSet, alloc *keys.Allocator, a *models.RawAddress) int {
	row := models.Address{
		ID:          alloc.Allocate(EntityAddress),
		AddressLine: a.Address,
		City:        a.City,
		State:       a.State,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		Country:     a.CountryOrDefault(),
	}

	if a.Coordinates != nil {
		row.Latitude = a.Coordinates.Lat
		row.Longitude = a.Coordinates.Lng
	}

	ts.Addresses = append(ts.Addresses, row)

	return row.ID
}

func (t *Transformer) category(ts *models.TableSet, alloc *keys.Allocator, name string) int {
	slug := utils.Slugify(name)

	return alloc.GetOrCreate(EntityCategory, slug, func(id int) {
		ts.Categories = append(ts.Categories, models.Category{ID: id, Name: name, Slug: slug})
		ts.CategoryKeys[slug] = id
	})
}

func (t *Transformer) product(ts *models.TableSet, alloc *keys.Allocator, p *models.RawProduct) {
	if p.ID == nil {
		return
	}

	alloc.GetOrCreate(EntityProduct, *p.ID, func(id int) {
		row := models.Product{
			ID:                   id,
			SourceID:             *p.ID,
			Title:                p.Title,
			Description:          p.Description,
			CategoryID:           ptr(t.category(ts, alloc, p.CategoryOrDefault())),
			Price:                p.Price,
			DiscountPercentage:   p.DiscountPercentage,
			Rating:               p.Rating,
			Stock:                p.Stock,
			Brand:                p.Brand,
			SKU:                  p.SKU,
			Weight:               p.Weight,
			WarrantyInfo:         p.WarrantyInformation,
			ShippingInfo:         p.ShippingInformation,
			AvailabilityStatus:   p.AvailabilityStatus,
			ReturnPolicy:         p.ReturnPolicy,
			MinimumOrderQuantity: p.MinimumOrderQuantity,
			ThumbnailURL:         p.Thumbnail,
		}

		if p.Dimensions != nil {
			row.Width = p.Dimensions.Width
			row.Height = p.Dimensions.Height
			row.Depth = p.Dimensions.Depth
		}

		if p.Meta != nil {
			row.Barcode = p.Meta.Barcode
			row.QRCodeURL = p.Meta.QRCode
			row.CreatedAt = p.Meta.CreatedAt
			row.UpdatedAt = p.Meta.UpdatedAt
		}

		ts.Products = append(ts.Products, row)

		for _, tag := range p.Tags {
			ts.ProductTags = append(ts.ProductTags, models.ProductTag{
				ID:        alloc.Allocate(EntityTag),
				ProductID: id,
				Tag:       tag,
			})
		}

		for order, url := range p.Images {
			ts.ProductImages = append(ts.ProductImages, models.ProductImage{
				ID:         alloc.Allocate(EntityImage),
				ProductID:  id,
				ImageURL:   url,
				ImageOrder: order,
			})
		}

		for _, r := range p.Reviews {
			ts.Reviews = append(ts.Reviews, models.Review{
				ID:            alloc.Allocate(EntityReview),
				ProductID:     id,
				Rating:        r.Rating,
				Comment:       r.Comment,
				ReviewerName:  r.ReviewerName,
				ReviewerEmail: r.ReviewerEmail,
				ReviewDate:    r.Date,
			})
		}
	})
}

func (t *Transformer) cart(ts *models.TableSet, alloc *keys.Allocator, c *models.RawCart) {
	if c.ID == nil {
		return
	}

	alloc.GetOrCreate(EntityOrder, *c.ID, func(id int) {
		order := models.Order{
			ID:              id,
			SourceID:        *c.ID,
			Total:           c.Total,
			DiscountedTotal: c.DiscountedTotal,
			TotalProducts:   c.TotalProducts,
			TotalQuantity:   c.TotalQuantity,
			OrderDate:       t.orderDate(),
			Status:          orderStatuses[t.rng.IntN(len(orderStatuses))],
		}

		if c.UserID != nil {
			if userID, ok := alloc.Lookup(EntityUser, *c.UserID); ok {
				order.UserID = ptr(userID)
			} else {
				ts.Unresolved = append(ts.Unresolved, models.UnresolvedReference{
					Table:       models.TableOrders,
					RowID:       id,
					Column:      "user_id",
					Target:      models.TableUsers,
					SourceValue: *c.UserID,
				})
			}
		}

		ts.Orders = append(ts.Orders, order)

		for _, line := range c.Products {
			t.orderItem(ts, alloc, id, &line)
		}
	})
}

func (t *Transformer) orderItem(ts *models.TableSet, alloc *keys.Allocator, orderID int, line *models.RawCartLine) {
	item := models.OrderItem{
		ID:                 alloc.Allocate(EntityItem),
		OrderID:            orderID,
		Price:              line.Price,
		DiscountPercentage: line.DiscountPercentage,
		DiscountedTotal:    line.DiscountedTotal,
		Total:              line.Total,
	}

	if line.Quantity != nil {
		item.Quantity = *line.Quantity
	}

	if line.ID != nil {
		if productID, ok := alloc.Lookup(EntityProduct, *line.ID); ok {
			item.ProductID = ptr(productID)
		} else {
			ts.Unresolved = append(ts.Unresolved, models.UnresolvedReference{
				Table:       models.TableOrderItems,
				RowID:       item.ID,
				Column:      "product_id",
				Target:      models.TableProducts,
				SourceValue: *line.ID,
			})
		}
	}

	ts.OrderItems = append(ts.OrderItems, item)
}

// orderDate picks a day in the past 365 days at a time between 09:00 and 21:59.
func (t *Transformer) orderDate() time.Time {
	now := t.now().UTC()
	day := now.AddDate(0, 0, -t.rng.IntN(366))

	return time.Date(day.Year(), day.Month(), day.Day(),
		9+t.rng.IntN(13), t.rng.IntN(60), t.rng.IntN(60), 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
