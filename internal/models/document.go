package models

// Document collection names.
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

// CoordinatesDoc is an embedded lat/lng pair.
type CoordinatesDoc struct {
	Lat *float64 `json:"lat" bson:"lat"`
	Lng *float64 `json:"lng" bson:"lng"`
}

// AddressDoc is an embedded address.
type AddressDoc struct {
	Coordinates CoordinatesDoc `json:"coordinates" bson:"coordinates"`
	AddressLine string         `json:"address_line" bson:"address_line"`
	City        string         `json:"city" bson:"city"`
	State       string         `json:"state" bson:"state"`
	StateCode   string         `json:"state_code" bson:"state_code"`
	PostalCode  string         `json:"postal_code" bson:"postal_code"`
	Country     string         `json:"country" bson:"country"`
}

// BankDoc is an embedded payment card.
type BankDoc struct {
	CardNumber string `json:"card_number" bson:"card_number"`
	CardType   string `json:"card_type" bson:"card_type"`
	CardExpire string `json:"card_expire" bson:"card_expire"`
	Currency   string `json:"currency" bson:"currency"`
	IBAN       string `json:"iban" bson:"iban"`
}

// CompanyDoc is an embedded employer.
type CompanyDoc struct {
	Address    *AddressDoc `json:"address,omitempty" bson:"address,omitempty"`
	Name       string      `json:"name" bson:"name"`
	Department string      `json:"department" bson:"department"`
	Title      string      `json:"title" bson:"title"`
}

// HairDoc is embedded hair info.
type HairDoc struct {
	Color string `json:"color" bson:"color"`
	Type  string `json:"type" bson:"type"`
}

// CryptoDoc is an embedded wallet.
type CryptoDoc struct {
	Coin    string `json:"coin" bson:"coin"`
	Wallet  string `json:"wallet" bson:"wallet"`
	Network string `json:"network" bson:"network"`
}

// UserDocument is a user with its address, bank and company embedded.
// Absent sub-entities are omitted entirely.
type UserDocument struct {
	Age        *int        `json:"age" bson:"age"`
	Height     *float64    `json:"height" bson:"height"`
	Weight     *float64    `json:"weight" bson:"weight"`
	Address    *AddressDoc `json:"address,omitempty" bson:"address,omitempty"`
	Bank       *BankDoc    `json:"bank,omitempty" bson:"bank,omitempty"`
	Company    *CompanyDoc `json:"company,omitempty" bson:"company,omitempty"`
	Hair       HairDoc     `json:"hair" bson:"hair"`
	Crypto     CryptoDoc   `json:"crypto" bson:"crypto"`
	FirstName  string      `json:"first_name" bson:"first_name"`
	LastName   string      `json:"last_name" bson:"last_name"`
	MaidenName string      `json:"maiden_name" bson:"maiden_name"`
	Gender     string      `json:"gender" bson:"gender"`
	Email      string      `json:"email" bson:"email"`
	Phone      string      `json:"phone" bson:"phone"`
	Username   string      `json:"username" bson:"username"`
	BirthDate  string      `json:"birth_date" bson:"birth_date"`
	Image      string      `json:"image" bson:"image"`
	BloodGroup string      `json:"blood_group" bson:"blood_group"`
	EyeColor   string      `json:"eye_color" bson:"eye_color"`
	University string      `json:"university" bson:"university"`
	Role       string      `json:"role" bson:"role"`
	ID         int         `json:"_id" bson:"_id"`
}

// DimensionsDoc is an embedded product size.
type DimensionsDoc struct {
	Width  *float64 `json:"width" bson:"width"`
	Height *float64 `json:"height" bson:"height"`
	Depth  *float64 `json:"depth" bson:"depth"`
}

// MetaDoc is embedded product bookkeeping.
type MetaDoc struct {
	Barcode   string `json:"barcode" bson:"barcode"`
	QRCode    string `json:"qr_code" bson:"qr_code"`
	CreatedAt string `json:"created_at" bson:"created_at"`
	UpdatedAt string `json:"updated_at" bson:"updated_at"`
}

// CategoryDoc is an embedded category.
type CategoryDoc struct {
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
	ID   int    `json:"id" bson:"id"`
}

// ReviewDoc is an embedded review.
type ReviewDoc struct {
	Rating        *int   `json:"rating" bson:"rating"`
	Comment       string `json:"comment" bson:"comment"`
	ReviewerName  string `json:"reviewer_name" bson:"reviewer_name"`
	ReviewerEmail string `json:"reviewer_email" bson:"reviewer_email"`
	Date          string `json:"date" bson:"date"`
}

// ProductDocument is a product with category, tags, images and reviews embedded.
type ProductDocument struct {
	Price                *float64      `json:"price" bson:"price"`
	DiscountPercentage   *float64      `json:"discount_percentage" bson:"discount_percentage"`
	Rating               *float64      `json:"rating" bson:"rating"`
	Stock                *int          `json:"stock" bson:"stock"`
	Weight               *float64      `json:"weight" bson:"weight"`
	MinimumOrderQuantity *int          `json:"minimum_order_quantity" bson:"minimum_order_quantity"`
	Category             *CategoryDoc  `json:"category,omitempty" bson:"category,omitempty"`
	Dimensions           DimensionsDoc `json:"dimensions" bson:"dimensions"`
	Meta                 MetaDoc       `json:"meta" bson:"meta"`
	Title                string        `json:"title" bson:"title"`
	Description          string        `json:"description" bson:"description"`
	Brand                string        `json:"brand" bson:"brand"`
	SKU                  string        `json:"sku" bson:"sku"`
	WarrantyInfo         string        `json:"warranty_information" bson:"warranty_information"`
	ShippingInfo         string        `json:"shipping_information" bson:"shipping_information"`
	AvailabilityStatus   string        `json:"availability_status" bson:"availability_status"`
	ReturnPolicy         string        `json:"return_policy" bson:"return_policy"`
	Thumbnail            string        `json:"thumbnail" bson:"thumbnail"`
	Tags                 []string      `json:"tags" bson:"tags"`
	Images               []string      `json:"images" bson:"images"`
	Reviews              []ReviewDoc   `json:"reviews" bson:"reviews"`
	ID                   int           `json:"_id" bson:"_id"`
}

// OrderUserDoc is the user summary embedded in an order.
type OrderUserDoc struct {
	Username  string `json:"username" bson:"username"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	ID        int    `json:"id" bson:"id"`
}

// OrderItemDoc is one embedded order line.
type OrderItemDoc struct {
	Price              *float64 `json:"price" bson:"price"`
	Total              *float64 `json:"total" bson:"total"`
	DiscountPercentage *float64 `json:"discount_percentage" bson:"discount_percentage"`
	DiscountedTotal    *float64 `json:"discounted_total" bson:"discounted_total"`
	Title              string   `json:"title" bson:"title"`
	Category           string   `json:"category" bson:"category"`
	Thumbnail          string   `json:"thumbnail" bson:"thumbnail"`
	ProductID          int      `json:"product_id" bson:"product_id"`
	Quantity           int      `json:"quantity" bson:"quantity"`
}

// OrderDocument is an order with its user summary and items embedded.
type OrderDocument struct {
	OrderDate       string         `json:"order_date" bson:"order_date"`
	User            *OrderUserDoc  `json:"user,omitempty" bson:"user,omitempty"`
	Total           *float64       `json:"total" bson:"total"`
	DiscountedTotal *float64       `json:"discounted_total" bson:"discounted_total"`
	TotalProducts   *int           `json:"total_products" bson:"total_products"`
	TotalQuantity   *int           `json:"total_quantity" bson:"total_quantity"`
	Status          string         `json:"status" bson:"status"`
	Items           []OrderItemDoc `json:"items" bson:"items"`
	ID              int            `json:"_id" bson:"_id"`
}

// DocumentSet is the document projection of one run.
type DocumentSet struct {
	Users    []UserDocument    `json:"users"`
	Products []ProductDocument `json:"products"`
	Orders   []OrderDocument   `json:"orders"`
}

// Counts returns the number of documents per collection.
func (d *DocumentSet) Counts() map[string]int {
	return map[string]int{
		CollectionUsers:    len(d.Users),
		CollectionProducts: len(d.Products),
		CollectionOrders:   len(d.Orders),
	}
}
