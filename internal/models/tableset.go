package models

// UnresolvedReference records a source reference that named an entity the run never saw.
// The referring row keeps a null foreign key.
type UnresolvedReference struct {
	Table       string `json:"table"`
	Column      string `json:"column"`
	Target      string `json:"target"`
	RowID       int    `json:"row_id"`
	SourceValue int    `json:"source_value"`
}

// TableSet is the normalized 3NF output of one run.
type TableSet struct {
	// CategoryKeys maps category slug to surrogate key.
	CategoryKeys map[string]int `json:"-"`

	Addresses     []Address      `json:"addresses"`
	Banks         []Bank         `json:"banks"`
	Companies     []Company      `json:"companies"`
	Categories    []Category     `json:"categories"`
	Users         []User         `json:"users"`
	Products      []Product      `json:"products"`
	ProductTags   []ProductTag   `json:"product_tags"`
	ProductImages []ProductImage `json:"product_images"`
	Reviews       []Review       `json:"reviews"`
	Orders        []Order        `json:"orders"`
	OrderItems    []OrderItem    `json:"order_items"`

	// Issues holds problems found in the raw input (missing sources, skipped records).
	Issues     []error               `json:"-"`
	Unresolved []UnresolvedReference `json:"-"`
}

// NewTableSet returns a TableSet with every table initialized to an empty slice.
func NewTableSet() *TableSet {
	return &TableSet{
		CategoryKeys:  make(map[string]int),
		Addresses:     []Address{},
		Banks:         []Bank{},
		Companies:     []Company{},
		Categories:    []Category{},
		Users:         []User{},
		Products:      []Product{},
		ProductTags:   []ProductTag{},
		ProductImages: []ProductImage{},
		Reviews:       []Review{},
		Orders:        []Order{},
		OrderItems:    []OrderItem{},
	}
}

// Tables returns the normalized tables in parent-first order.
func (ts *TableSet) Tables() []Table {
	return []Table{
		NewTable(TableAddresses, ts.Addresses),
		NewTable(TableBanks, ts.Banks),
		NewTable(TableCompanies, ts.Companies),
		NewTable(TableCategories, ts.Categories),
		NewTable(TableUsers, ts.Users),
		NewTable(TableProducts, ts.Products),
		NewTable(TableProductTags, ts.ProductTags),
		NewTable(TableProductImages, ts.ProductImages),
		NewTable(TableReviews, ts.Reviews),
		NewTable(TableOrders, ts.Orders),
		NewTable(TableOrderItems, ts.OrderItems),
	}
}

// Counts returns the number of rows per table.
func (ts *TableSet) Counts() map[string]int {
	counts := make(map[string]int)
	for _, t := range ts.Tables() {
		counts[t.Name] = t.Len()
	}

	return counts
}

// UserByID indexes users by surrogate key.
func (ts *TableSet) UserByID() map[int]*User {
	index := make(map[int]*User, len(ts.Users))
	for i := range ts.Users {
		index[ts.Users[i].ID] = &ts.Users[i]
	}

	return index
}

// ProductByID indexes products by surrogate key.
func (ts *TableSet) ProductByID() map[int]*Product {
	index := make(map[int]*Product, len(ts.Products))
	for i := range ts.Products {
		index[ts.Products[i].ID] = &ts.Products[i]
	}

	return index
}

// AddressByID indexes addresses by surrogate key.
func (ts *TableSet) AddressByID() map[int]*Address {
	index := make(map[int]*Address, len(ts.Addresses))
	for i := range ts.Addresses {
		index[ts.Addresses[i].ID] = &ts.Addresses[i]
	}

	return index
}

// CategoryByID indexes categories by surrogate key.
func (ts *TableSet) CategoryByID() map[int]*Category {
	index := make(map[int]*Category, len(ts.Categories))
	for i := range ts.Categories {
		index[ts.Categories[i].ID] = &ts.Categories[i]
	}

	return index
}

// OrderByID indexes orders by surrogate key.
func (ts *TableSet) OrderByID() map[int]*Order {
	index := make(map[int]*Order, len(ts.Orders))
	for i := range ts.Orders {
		index[ts.Orders[i].ID] = &ts.Orders[i]
	}

	return index
}
