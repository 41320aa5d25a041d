package models

import "time"

// Star schema table names.
const (
	StarDimUsers     = "star_dim_users"
	StarDimProducts  = "star_dim_products"
	StarDimDate      = "star_dim_date"
	StarDimLocations = "star_dim_location"
	StarFactOrders   = "star_fact_orders"
)

// Fallback values used by the dimensional projections.
const (
	DefaultStatus   = "completed"
	UnknownCategory = "Unknown"
	DefaultRegion   = "Other"
)

// Layout names.
const (
	LayoutNormalized = "normalized"
	LayoutStar       = "star"
	LayoutSnowflake  = "snowflake"
	LayoutDocument   = "document"
)

// Snowflake schema table names.
const (
	SnowDimRoles      = "snow_dim_user_roles"
	SnowDimStates     = "snow_dim_states"
	SnowDimCities     = "snow_dim_cities"
	SnowDimCategories = "snow_dim_categories"
	SnowDimBrands     = "snow_dim_brands"
	SnowDimUsers      = "snow_dim_users"
	SnowDimProducts   = "snow_dim_products"
	SnowDimDate       = "snow_dim_date"
	SnowFactOrders    = "snow_fact_orders"
)

// DateRow is one calendar day of the date dimension. FullDate is its natural key.
type DateRow struct {
	FullDate      time.Time `json:"full_date" gorm:"type:date;uniqueIndex"`
	MonthName     string    `json:"month_name"`
	DayName       string    `json:"day_name"`
	HolidayName   string    `json:"holiday_name"`
	DateID        int       `json:"date_id" gorm:"primaryKey;autoIncrement:false"`
	Year          int       `json:"year"`
	Quarter       int       `json:"quarter"`
	Month         int       `json:"month"`
	Day           int       `json:"day"`
	DayOfWeek     int       `json:"day_of_week"`
	WeekOfYear    int       `json:"week_of_year"`
	FiscalYear    int       `json:"fiscal_year"`
	FiscalQuarter int       `json:"fiscal_quarter"`
	IsWeekend     bool      `json:"is_weekend"`
	IsHoliday     bool      `json:"is_holiday"`
}

// StarDimUser is the star schema user dimension.
type StarDimUser struct {
	Age        *int   `json:"age"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FullName   string `json:"full_name"`
	Gender     string `json:"gender"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date"`
	BloodGroup string `json:"blood_group"`
	University string `json:"university"`
	Role       string `json:"role"`
	UserID     int    `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
}

// StarDimProduct is the star schema product dimension with category and brand inlined.
type StarDimProduct struct {
	Price              *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Weight             *float64 `json:"weight"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Brand              string   `json:"brand"`
	SKU                string   `json:"sku"`
	WarrantyInfo       string   `json:"warranty_info"`
	AvailabilityStatus string   `json:"availability_status"`
	ProductID          int      `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
}

// StarDimLocation is one location per source address.
type StarDimLocation struct {
	AddressID   *int     `json:"address_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	AddressLine string   `json:"address_line"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	StateCode   string   `json:"state_code"`
	PostalCode  string   `json:"postal_code"`
	Country     string   `json:"country"`
	Region      string   `json:"region"`
	LocationID  int      `json:"location_id" gorm:"primaryKey;autoIncrement:false"`
}

// StarFactOrder is one order line of the star schema fact table.
type StarFactOrder struct {
	UserID             *int    `json:"user_id" parquet:"user_id,optional"`
	ProductID          *int    `json:"product_id" parquet:"product_id,optional"`
	LocationID         *int    `json:"location_id" parquet:"location_id,optional"`
	OrderStatus        string  `json:"order_status" parquet:"order_status"`
	FactID             int     `json:"fact_id" gorm:"primaryKey;autoIncrement:false" parquet:"fact_id"`
	OrderID            int     `json:"order_id" parquet:"order_id"`
	DateID             int     `json:"date_id" parquet:"date_id"`
	Quantity           int     `json:"quantity" validate:"gt=0" parquet:"quantity"`
	UnitPrice          float64 `json:"unit_price" validate:"gte=0" parquet:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage" parquet:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount" parquet:"discount_amount"`
	Subtotal           float64 `json:"subtotal" validate:"gte=0" parquet:"subtotal"`
	TotalAmount        float64 `json:"total_amount" validate:"gte=0" parquet:"total_amount"`
}

// SnowDimRole is a user role.
type SnowDimRole struct {
	RoleName        string `json:"role_name"`
	RoleDescription string `json:"role_description"`
	RoleID          int    `json:"role_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowDimState is a state, keyed by state code.
type SnowDimState struct {
	StateName string `json:"state_name"`
	StateCode string `json:"state_code"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	StateID   int    `json:"state_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowDimCity is a city within a state.
type SnowDimCity struct {
	Population *int    `json:"population"`
	Timezone   *string `json:"timezone"`
	CityName   string  `json:"city_name"`
	CityID     int     `json:"city_id" gorm:"primaryKey;autoIncrement:false"`
	StateID    int     `json:"state_id" gorm:"index"`
}

// SnowDimCategory is a product category keyed by slug.
type SnowDimCategory struct {
	CategoryName string `json:"category_name"`
	CategorySlug string `json:"category_slug"`
	CategoryID   int    `json:"category_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowDimBrand is a product brand keyed by name.
type SnowDimBrand struct {
	BrandCountry *string `json:"brand_country"`
	BrandWebsite *string `json:"brand_website"`
	BrandName    string  `json:"brand_name"`
	BrandID      int     `json:"brand_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowDimUser is the snowflake user dimension; role and city are references.
type SnowDimUser struct {
	Age        *int     `json:"age"`
	RoleID     *int     `json:"role_id"`
	CityID     *int     `json:"city_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	FullName   string   `json:"full_name"`
	Gender     string   `json:"gender"`
	Phone      string   `json:"phone"`
	BirthDate  string   `json:"birth_date"`
	BloodGroup string   `json:"blood_group"`
	University string   `json:"university"`
	PostalCode string   `json:"postal_code"`
	UserID     int      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowDimProduct is the snowflake product dimension; category and brand are references.
type SnowDimProduct struct {
	CategoryID         *int     `json:"category_id"`
	BrandID            *int     `json:"brand_id"`
	Price              *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage"`
	Rating             *float64 `json:"rating"`
	Stock              *int     `json:"stock"`
	Weight             *float64 `json:"weight"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	SKU                string   `json:"sku"`
	WarrantyInfo       string   `json:"warranty_info"`
	AvailabilityStatus string   `json:"availability_status"`
	ProductID          int      `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
}

// SnowFactOrder is one order line of the snowflake fact table.
type SnowFactOrder struct {
	UserID             *int    `json:"user_id" parquet:"user_id,optional"`
	ProductID          *int    `json:"product_id" parquet:"product_id,optional"`
	OrderStatus        string  `json:"order_status" parquet:"order_status"`
	FactID             int     `json:"fact_id" gorm:"primaryKey;autoIncrement:false" parquet:"fact_id"`
	OrderID            int     `json:"order_id" parquet:"order_id"`
	DateID             int     `json:"date_id" parquet:"date_id"`
	Quantity           int     `json:"quantity" validate:"gt=0" parquet:"quantity"`
	UnitPrice          float64 `json:"unit_price" validate:"gte=0" parquet:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage" parquet:"discount_percentage"`
	DiscountAmount     float64 `json:"discount_amount" parquet:"discount_amount"`
	Subtotal           float64 `json:"subtotal" validate:"gte=0" parquet:"subtotal"`
	TotalAmount        float64 `json:"total_amount" validate:"gte=0" parquet:"total_amount"`
}

// StarSchema is the star projection of one run.
type StarSchema struct {
	DimUsers    []StarDimUser     `json:"dim_users"`
	DimProducts []StarDimProduct  `json:"dim_products"`
	DimDate     []DateRow         `json:"dim_date"`
	DimLocation []StarDimLocation `json:"dim_location"`
	FactOrders  []StarFactOrder   `json:"fact_orders"`
}

// Tables returns the star tables, dimensions before the fact table.
func (s *StarSchema) Tables() []Table {
	return []Table{
		NewTable(StarDimUsers, s.DimUsers),
		NewTable(StarDimProducts, s.DimProducts),
		NewTable(StarDimDate, s.DimDate),
		NewTable(StarDimLocations, s.DimLocation),
		NewTable(StarFactOrders, s.FactOrders),
	}
}

// SnowflakeSchema is the snowflake projection of one run.
type SnowflakeSchema struct {
	DimRoles      []SnowDimRole     `json:"dim_user_roles"`
	DimStates     []SnowDimState    `json:"dim_states"`
	DimCities     []SnowDimCity     `json:"dim_cities"`
	DimCategories []SnowDimCategory `json:"dim_categories"`
	DimBrands     []SnowDimBrand    `json:"dim_brands"`
	DimUsers      []SnowDimUser     `json:"dim_users"`
	DimProducts   []SnowDimProduct  `json:"dim_products"`
	DimDate       []DateRow         `json:"dim_date"`
	FactOrders    []SnowFactOrder   `json:"fact_orders"`
}

// Tables returns the snowflake tables in load order.
func (s *SnowflakeSchema) Tables() []Table {
	return []Table{
		NewTable(SnowDimRoles, s.DimRoles),
		NewTable(SnowDimStates, s.DimStates),
		NewTable(SnowDimCities, s.DimCities),
		NewTable(SnowDimCategories, s.DimCategories),
		NewTable(SnowDimBrands, s.DimBrands),
		NewTable(SnowDimDate, s.DimDate),
		NewTable(SnowDimUsers, s.DimUsers),
		NewTable(SnowDimProducts, s.DimProducts),
		NewTable(SnowFactOrders, s.FactOrders),
	}
}
