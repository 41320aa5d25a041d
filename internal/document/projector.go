// Package document projects normalized tables into self-contained documents with
// related entities embedded.
package document

import (
	"cmp"
	"slices"
	"time"

	"reshape/internal/dimension"
	"reshape/internal/logger"
	"reshape/internal/models"
)

// OrderDateLayout is the textual form of order dates in documents.
const OrderDateLayout = time.RFC3339

// Projector builds document sets.
type Projector struct {
	log *logger.Logger
}

// NewProjector creates a projector.
func NewProjector(log *logger.Logger) *Projector {
	if log == nil {
		log = logger.Discard()
	}

	return &Projector{log: log}
}

// Project embeds related rows of ts into user, product and order documents.
func (p *Projector) Project(ts *models.TableSet) *models.DocumentSet {
	addresses := ts.AddressByID()
	categories := ts.CategoryByID()

	docs := &models.DocumentSet{
		Users:    p.users(ts, addresses),
		Products: p.products(ts, categories),
	}
	docs.Orders = p.orders(ts, categories)

	p.log.Info("projected documents",
		"users", len(docs.Users),
		"products", len(docs.Products),
		"orders", len(docs.Orders),
	)

	return docs
}

func (p *Projector) users(ts *models.TableSet, addresses map[int]*models.Address) []models.UserDocument {
	banks := make(map[int]*models.Bank, len(ts.Banks))
	for i := range ts.Banks {
		banks[ts.Banks[i].ID] = &ts.Banks[i]
	}

	companies := make(map[int]*models.Company, len(ts.Companies))
	for i := range ts.Companies {
		companies[ts.Companies[i].ID] = &ts.Companies[i]
	}

	out := make([]models.UserDocument, 0, len(ts.Users))
	for i := range ts.Users {
		u := &ts.Users[i]
		doc := models.UserDocument{
			ID:         u.ID,
			Age:        u.Age,
			Height:     u.Height,
			Weight:     u.Weight,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			MaidenName: u.MaidenName,
			Gender:     u.Gender,
			Email:      u.Email,
			Phone:      u.Phone,
			Username:   u.Username,
			BirthDate:  u.BirthDate,
			Image:      u.ImageURL,
			BloodGroup: u.BloodGroup,
			EyeColor:   u.EyeColor,
			University: u.University,
			Role:       u.Role,
			Hair:       models.HairDoc{Color: u.HairColor, Type: u.HairType},
			Crypto:     models.CryptoDoc{Coin: u.CryptoCoin, Wallet: u.CryptoWallet, Network: u.CryptoNetwork},
		}

		doc.Address = addressDoc(addresses, u.AddressID)

		if u.BankID != nil {
			if b, ok := banks[*u.BankID]; ok {
				doc.Bank = &models.BankDoc{
					CardNumber: b.CardNumber,
					CardType:   b.CardType,
					CardExpire: b.CardExpire,
					Currency:   b.Currency,
					IBAN:       b.IBAN,
				}
			}
		}

		if u.CompanyID != nil {
			if c, ok := companies[*u.CompanyID]; ok {
				doc.Company = &models.CompanyDoc{
					Name:       c.Name,
					Department: c.Department,
					Title:      c.Title,
					Address:    addressDoc(addresses, c.AddressID),
				}
			}
		}

		out = append(out, doc)
	}

	return out
}

func addressDoc(addresses map[int]*models.Address, id *int) *models.AddressDoc {
	if id == nil {
		return nil
	}

	a, ok := addresses[*id]
	if !ok {
		return nil
	}

	return &models.AddressDoc{
		AddressLine: a.AddressLine,
		City:        a.City,
		State:       a.State,
		StateCode:   a.StateCode,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		Coordinates: models.CoordinatesDoc{Lat: a.Latitude, Lng: a.Longitude},
	}
}

func (p *Projector) products(ts *models.TableSet, categories map[int]*models.Category) []models.ProductDocument {
	tags := make(map[int][]string)
	for _, t := range ts.ProductTags {
		tags[t.ProductID] = append(tags[t.ProductID], t.Tag)
	}

	images := make(map[int][]models.ProductImage)
	for _, img := range ts.ProductImages {
		images[img.ProductID] = append(images[img.ProductID], img)
	}

	reviews := make(map[int][]models.ReviewDoc)
	for _, r := range ts.Reviews {
		reviews[r.ProductID] = append(reviews[r.ProductID], models.ReviewDoc{
			Rating:        r.Rating,
			Comment:       r.Comment,
			ReviewerName:  r.ReviewerName,
			ReviewerEmail: r.ReviewerEmail,
			Date:          r.ReviewDate,
		})
	}

	out := make([]models.ProductDocument, 0, len(ts.Products))
	for i := range ts.Products {
		pr := &ts.Products[i]
		doc := models.ProductDocument{
			ID:                   pr.ID,
			Title:                pr.Title,
			Description:          pr.Description,
			Price:                pr.Price,
			DiscountPercentage:   pr.DiscountPercentage,
			Rating:               pr.Rating,
			Stock:                pr.Stock,
			Weight:               pr.Weight,
			MinimumOrderQuantity: pr.MinimumOrderQuantity,
			Brand:                pr.Brand,
			SKU:                  pr.SKU,
			WarrantyInfo:         pr.WarrantyInfo,
			ShippingInfo:         pr.ShippingInfo,
			AvailabilityStatus:   pr.AvailabilityStatus,
			ReturnPolicy:         pr.ReturnPolicy,
			Thumbnail:            pr.ThumbnailURL,
			Dimensions:           models.DimensionsDoc{Width: pr.Width, Height: pr.Height, Depth: pr.Depth},
			Meta: models.MetaDoc{
				Barcode:   pr.Barcode,
				QRCode:    pr.QRCodeURL,
				CreatedAt: pr.CreatedAt,
				UpdatedAt: pr.UpdatedAt,
			},
			Tags:    nonNil(tags[pr.ID]),
			Images:  imageURLs(images[pr.ID]),
			Reviews: nonNil(reviews[pr.ID]),
		}

		if pr.CategoryID != nil {
			if c, ok := categories[*pr.CategoryID]; ok {
				doc.Category = &models.CategoryDoc{ID: c.ID, Name: c.Name, Slug: c.Slug}
			}
		}

		out = append(out, doc)
	}

	return out
}

func imageURLs(images []models.ProductImage) []string {
	slices.SortStableFunc(images, func(a, b models.ProductImage) int {
		return cmp.Compare(a.ImageOrder, b.ImageOrder)
	})

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}

	return urls
}

func (p *Projector) orders(ts *models.TableSet, categories map[int]*models.Category) []models.OrderDocument {
	users := ts.UserByID()
	products := ts.ProductByID()

	items := make(map[int][]models.OrderItemDoc)
	for i := range ts.OrderItems {
		item := &ts.OrderItems[i]
		if item.ProductID == nil {
			continue
		}

		pr, ok := products[*item.ProductID]
		if !ok {
			p.log.Debug("dropping order item with unknown product", "order_item_id", item.ID)
			continue
		}

		doc := models.OrderItemDoc{
			ProductID:          pr.ID,
			Title:              pr.Title,
			Thumbnail:          pr.ThumbnailURL,
			Quantity:           item.Quantity,
			Price:              item.Price,
			Total:              item.Total,
			DiscountPercentage: item.DiscountPercentage,
			DiscountedTotal:    item.DiscountedTotal,
		}

		if pr.CategoryID != nil {
			if c, ok := categories[*pr.CategoryID]; ok {
				doc.Category = c.Name
			}
		}

		items[item.OrderID] = append(items[item.OrderID], doc)
	}

	out := make([]models.OrderDocument, 0, len(ts.Orders))
	for i := range ts.Orders {
		o := &ts.Orders[i]
		doc := models.OrderDocument{
			ID:              o.ID,
			OrderDate:       o.OrderDate.UTC().Format(OrderDateLayout),
			Status:          dimension.Status(o),
			Total:           o.Total,
			DiscountedTotal: o.DiscountedTotal,
			TotalProducts:   o.TotalProducts,
			TotalQuantity:   o.TotalQuantity,
			Items:           nonNil(items[o.ID]),
		}

		if o.UserID != nil {
			if u, ok := users[*o.UserID]; ok {
				doc.User = &models.OrderUserDoc{
					ID:        u.ID,
					Username:  u.Username,
					FirstName: u.FirstName,
					LastName:  u.LastName,
					Email:     u.Email,
				}
			}
		}

		out = append(out, doc)
	}

	return out
}

// nonNil keeps empty lists as [] rather than null in encoded documents.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
