package fixtures

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"reshape/internal/models"
)

// ScaleBaseID is the first id given to generated records.
const ScaleBaseID = 10000

// Scale builds a dataset of n users, n products and n carts by replicating src and
// perturbing the copies: fresh ids, usernames, emails, prices and stock. Carts point
// at generated users, and their lines at the first copy of each source product, so
// every reference resolves. Collections absent from src stay absent.
func Scale(src *models.RawDataset, n int, rng *rand.Rand) *models.RawDataset {
	out := &models.RawDataset{}

	if src.Users != nil {
		out.Users = scaleUsers(src.Users, n, rng)
	}

	productIDs := make(map[int]int, len(src.Products))

	if src.Products != nil {
		out.Products = scaleProducts(src.Products, n, rng)

		for i := range min(len(src.Products), n) {
			if src.Products[i].ID != nil {
				productIDs[*src.Products[i].ID] = ScaleBaseID + i
			}
		}
	}

	if src.Carts != nil {
		out.Carts = scaleCarts(src.Carts, n, len(out.Users), productIDs, rng)
	}

	return out
}

func scaleUsers(users []models.RawUser, n int, rng *rand.Rand) []models.RawUser {
	if len(users) == 0 {
		return []models.RawUser{}
	}

	out := make([]models.RawUser, 0, n)

	for i := range n {
		u := users[i%len(users)]
		id := ScaleBaseID + i

		u.ID = &id
		u.Username = fmt.Sprintf("%s_%d", u.Username, id)
		u.Email = fmt.Sprintf("test_user_%d@example.com", id)
		u.Phone = fmt.Sprintf("+1-555-%04d-%04d", 1000+rng.IntN(9000), 1000+rng.IntN(9000))
		u.SSN = fmt.Sprintf("%03d-%02d-%04d", 100+rng.IntN(900), 10+rng.IntN(90), 1000+rng.IntN(9000))

		if u.Age != nil {
			age := 18 + rng.IntN(58)
			u.Age = &age
		}

		out = append(out, u)
	}

	return out
}

func scaleProducts(products []models.RawProduct, n int, rng *rand.Rand) []models.RawProduct {
	if len(products) == 0 {
		return []models.RawProduct{}
	}

	out := make([]models.RawProduct, 0, n)

	for i := range n {
		p := products[i%len(products)]
		id := ScaleBaseID + i

		p.ID = &id
		p.Title = fmt.Sprintf("%s v%d", p.Title, i/len(products)+1)
		p.SKU = fmt.Sprintf("SKU-%06d", id)

		if p.Meta != nil {
			meta := *p.Meta
			meta.Barcode = fmt.Sprintf("%013d", 1_000_000_000_000+rng.Int64N(9_000_000_000_000))
			p.Meta = &meta
		}

		if p.Price != nil {
			price := perturb(*p.Price, 0.8, 1.2, rng)
			p.Price = &price
		}

		stock := rng.IntN(501)
		p.Stock = &stock

		if p.Rating != nil {
			rating := round2(3 + rng.Float64()*2)
			p.Rating = &rating
		}

		out = append(out, p)
	}

	return out
}

func scaleCarts(carts []models.RawCart, n, users int, productIDs map[int]int, rng *rand.Rand) []models.RawCart {
	if len(carts) == 0 {
		return []models.RawCart{}
	}

	out := make([]models.RawCart, 0, n)

	for i := range n {
		c := carts[i%len(carts)]
		id := ScaleBaseID + i

		c.ID = &id

		if users > 0 {
			userID := ScaleBaseID + rng.IntN(users)
			c.UserID = &userID
		}

		if c.Total != nil {
			total := perturb(*c.Total, 0.9, 1.1, rng)
			discounted := round2(total * 0.85)
			c.Total = &total
			c.DiscountedTotal = &discounted
		}

		lines := make([]models.RawCartLine, len(c.Products))
		for j, line := range c.Products {
			if line.ID != nil {
				if mapped, ok := productIDs[*line.ID]; ok {
					line.ID = &mapped
				}
			}

			lines[j] = line
		}

		c.Products = lines
		out = append(out, c)
	}

	return out
}

// perturb scales v by a uniform factor in [lo, hi) and rounds to cents.
func perturb(v, lo, hi float64, rng *rand.Rand) float64 {
	return round2(v * (lo + rng.Float64()*(hi-lo)))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
