package models

// Defaults applied when the source omits a field.
const (
	DefaultRole     = "user"
	DefaultCountry  = "United States"
	DefaultCategory = "uncategorized"
)

// RawDataset holds the three source collections. A nil slice means the source was
// absent; an empty slice means it was present but held no records.
type RawDataset struct {
	Users    []RawUser    `json:"users"`
	Products []RawProduct `json:"products"`
	Carts    []RawCart    `json:"carts"`
}

// RawCoordinates is a latitude/longitude pair.
type RawCoordinates struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// RawAddress is a postal address nested in a user or company.
type RawAddress struct {
	Coordinates *RawCoordinates `json:"coordinates,omitempty"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	StateCode   string          `json:"stateCode"`
	PostalCode  string          `json:"postalCode"`
	Country     string          `json:"country,omitempty"`
}

// CountryOrDefault returns the country, falling back to DefaultCountry.
func (a *RawAddress) CountryOrDefault() string {
	if a.Country == "" {
		return DefaultCountry
	}

	return a.Country
}

// RawBank is the payment card block of a user.
type RawBank struct {
	CardExpire string `json:"cardExpire"`
	CardNumber string `json:"cardNumber"`
	CardType   string `json:"cardType"`
	Currency   string `json:"currency"`
	IBAN       string `json:"iban"`
}

// RawCompany is the employer block of a user.
type RawCompany struct {
	Address    *RawAddress `json:"address,omitempty"`
	Department string      `json:"department"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
}

// RawHair describes hair color and type.
type RawHair struct {
	Color string `json:"color"`
	Type  string `json:"type"`
}

// RawCrypto is a crypto wallet block.
type RawCrypto struct {
	Coin    string `json:"coin"`
	Wallet  string `json:"wallet"`
	Network string `json:"network"`
}

// RawUser is a user record as delivered by the upstream API.
type RawUser struct {
	ID         *int        `json:"id"`
	Age        *int        `json:"age"`
	Height     *float64    `json:"height"`
	Weight     *float64    `json:"weight"`
	Hair       *RawHair    `json:"hair,omitempty"`
	Address    *RawAddress `json:"address,omitempty"`
	Bank       *RawBank    `json:"bank,omitempty"`
	Company    *RawCompany `json:"company,omitempty"`
	Crypto     *RawCrypto  `json:"crypto,omitempty"`
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	MaidenName string      `json:"maidenName"`
	Gender     string      `json:"gender"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	BirthDate  string      `json:"birthDate"`
	Image      string      `json:"image"`
	BloodGroup string      `json:"bloodGroup"`
	EyeColor   string      `json:"eyeColor"`
	IP         string      `json:"ip"`
	MACAddress string      `json:"macAddress"`
	University string      `json:"university"`
	EIN        string      `json:"ein"`
	SSN        string      `json:"ssn"`
	UserAgent  string      `json:"userAgent"`
	Role       string      `json:"role,omitempty"`
}

// RoleOrDefault returns the user's role, falling back to DefaultRole.
func (u *RawUser) RoleOrDefault() string {
	if u.Role == "" {
		return DefaultRole
	}

	return u.Role
}

// RawDimensions is the physical size of a product.
type RawDimensions struct {
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Depth  *float64 `json:"depth"`
}

// RawMeta carries product bookkeeping fields.
type RawMeta struct {
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Barcode   string `json:"barcode"`
	QRCode    string `json:"qrCode"`
}

// RawReview is a product review.
type RawReview struct {
	Rating        *int   `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail"`
}

// RawProduct is a product record as delivered by the upstream API.
type RawProduct struct {
	ID                   *int           `json:"id"`
	Price                *float64       `json:"price"`
	DiscountPercentage   *float64       `json:"discountPercentage"`
	Rating               *float64       `json:"rating"`
	Stock                *int           `json:"stock"`
	Weight               *float64       `json:"weight"`
	MinimumOrderQuantity *int           `json:"minimumOrderQuantity"`
	Dimensions           *RawDimensions `json:"dimensions,omitempty"`
	Meta                 *RawMeta       `json:"meta,omitempty"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Category             string         `json:"category"`
	Brand                string         `json:"brand"`
	SKU                  string         `json:"sku"`
	WarrantyInformation  string         `json:"warrantyInformation"`
	ShippingInformation  string         `json:"shippingInformation"`
	AvailabilityStatus   string         `json:"availabilityStatus"`
	ReturnPolicy         string         `json:"returnPolicy"`
	Thumbnail            string         `json:"thumbnail"`
	Tags                 []string       `json:"tags"`
	Images               []string       `json:"images"`
	Reviews              []RawReview    `json:"reviews"`
}

// CategoryOrDefault returns the category name, falling back to DefaultCategory.
func (p *RawProduct) CategoryOrDefault() string {
	if p.Category == "" {
		return DefaultCategory
	}

	return p.Category
}

// RawCartLine is one product line inside a cart.
type RawCartLine struct {
	ID                 *int     `json:"id"`
	Price              *float64 `json:"price"`
	Quantity           *int     `json:"quantity"`
	Total              *float64 `json:"total"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	DiscountedTotal    *float64 `json:"discountedTotal"`
	Title              string   `json:"title"`
	Thumbnail          string   `json:"thumbnail"`
}

// RawCart is a shopping cart; each cart becomes an order.
type RawCart struct {
	ID              *int          `json:"id"`
	UserID          *int          `json:"userId"`
	Total           *float64      `json:"total"`
	DiscountedTotal *float64      `json:"discountedTotal"`
	TotalProducts   *int          `json:"totalProducts"`
	TotalQuantity   *int          `json:"totalQuantity"`
	Products        []RawCartLine `json:"products"`
}
