package models

import "time"

// Normalized table names, in parent-first order.
const (
	TableAddresses     = "addresses"
	TableBanks         = "banks"
	TableCompanies     = "companies"
	TableCategories    = "categories"
	TableUsers         = "users"
	TableProducts      = "products"
	TableProductTags   = "product_tags"
	TableProductImages = "product_images"
	TableReviews       = "reviews"
	TableOrders        = "orders"
	TableOrderItems    = "order_items"
)

// Address is a postal address shared by users and companies.
type Address struct {
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	AddressLine string   `json:"address_line"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	StateCode   string   `json:"state_code"`
	PostalCode  string   `json:"postal_code"`
	Country     string   `json:"country"`
	ID          int      `json:"id" gorm:"primaryKey;autoIncrement:false"`
}

// Bank is a user's payment card.
type Bank struct {
	CardNumber string `json:"card_number"`
	CardType   string `json:"card_type"`
	CardExpire string `json:"card_expire"`
	Currency   string `json:"currency"`
	IBAN       string `json:"iban"`
	ID         int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
}

// Company is a user's employer.
type Company struct {
	AddressID  *int   `json:"address_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Title      string `json:"title"`
	ID         int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
}

// Category is a product category keyed by slug.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug" gorm:"uniqueIndex"`
	ID   int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
}

// User is a normalized user row.
type User struct {
	Age           *int     `json:"age"`
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	AddressID     *int     `json:"address_id"`
	BankID        *int     `json:"bank_id"`
	CompanyID     *int     `json:"company_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	MaidenName    string   `json:"maiden_name"`
	Gender        string   `json:"gender"`
	Email         string   `json:"email" validate:"required"`
	Phone         string   `json:"phone"`
	Username      string   `json:"username" validate:"required"`
	Password      string   `json:"password"`
	BirthDate     string   `json:"birth_date"`
	ImageURL      string   `json:"image_url"`
	BloodGroup    string   `json:"blood_group"`
	EyeColor      string   `json:"eye_color"`
	HairColor     string   `json:"hair_color"`
	HairType      string   `json:"hair_type"`
	IPAddress     string   `json:"ip_address"`
	MACAddress    string   `json:"mac_address"`
	UserAgent     string   `json:"user_agent"`
	University    string   `json:"university"`
	EIN           string   `json:"ein"`
	SSN           string   `json:"ssn"`
	Role          string   `json:"role"`
	CryptoCoin    string   `json:"crypto_coin"`
	CryptoWallet  string   `json:"crypto_wallet"`
	CryptoNetwork string   `json:"crypto_network"`
	ID            int      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SourceID      int      `json:"source_id" gorm:"index"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Product is a normalized product row.
type Product struct {
	CategoryID           *int     `json:"category_id"`
	Price                *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPercentage   *float64 `json:"discount_percentage"`
	Rating               *float64 `json:"rating"`
	Stock                *int     `json:"stock"`
	Weight               *float64 `json:"weight"`
	Width                *float64 `json:"width"`
	Height               *float64 `json:"height"`
	Depth                *float64 `json:"depth"`
	MinimumOrderQuantity *int     `json:"minimum_order_quantity"`
	Title                string   `json:"title" validate:"required"`
	Description          string   `json:"description"`
	Brand                string   `json:"brand"`
	SKU                  string   `json:"sku"`
	WarrantyInfo         string   `json:"warranty_info"`
	ShippingInfo         string   `json:"shipping_info"`
	AvailabilityStatus   string   `json:"availability_status"`
	ReturnPolicy         string   `json:"return_policy"`
	Barcode              string   `json:"barcode"`
	QRCodeURL            string   `json:"qr_code_url"`
	ThumbnailURL         string   `json:"thumbnail_url"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
	ID                   int      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SourceID             int      `json:"source_id" gorm:"index"`
}

// ProductTag is one tag of a product.
type ProductTag struct {
	Tag       string `json:"tag"`
	ID        int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID int    `json:"product_id" gorm:"index"`
}

// ProductImage is one image of a product; ImageOrder is its zero-based position.
type ProductImage struct {
	ImageURL   string `json:"image_url"`
	ID         int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID  int    `json:"product_id" gorm:"index"`
	ImageOrder int    `json:"image_order"`
}

// Review is a product review.
type Review struct {
	Rating        *int   `json:"rating"`
	Comment       string `json:"comment"`
	ReviewerName  string `json:"reviewer_name"`
	ReviewerEmail string `json:"reviewer_email"`
	ReviewDate    string `json:"review_date"`
	ID            int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID     int    `json:"product_id" gorm:"index"`
}

// Order is a normalized order, one per source cart.
type Order struct {
	OrderDate       time.Time `json:"order_date"`
	UserID          *int      `json:"user_id" gorm:"index"`
	Total           *float64  `json:"total" validate:"omitempty,gte=0"`
	DiscountedTotal *float64  `json:"discounted_total"`
	TotalProducts   *int      `json:"total_products"`
	TotalQuantity   *int      `json:"total_quantity"`
	Status          string    `json:"status"`
	ID              int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SourceID        int       `json:"source_id" gorm:"index"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID          *int     `json:"product_id" gorm:"index"`
	Price              *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	DiscountedTotal    *float64 `json:"discounted_total"`
	Total              *float64 `json:"total"`
	ID                 int      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID            int      `json:"order_id" gorm:"index" validate:"required"`
	Quantity           int      `json:"quantity" validate:"gt=0"`
}
