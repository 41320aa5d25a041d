package integrity

import "reshape/internal/models"

// Relation is a foreign key: Table.Column references Target.TargetColumn.
type Relation struct {
	Table        string
	Column       string
	Target       string
	TargetColumn string
}

func fk(table, column, target, targetColumn string) Relation {
	return Relation{Table: table, Column: column, Target: target, TargetColumn: targetColumn}
}

// NormalizedRelations are the foreign keys of the 3NF layout.
var NormalizedRelations = []Relation{
	fk(models.TableCompanies, "address_id", models.TableAddresses, "id"),
	fk(models.TableUsers, "address_id", models.TableAddresses, "id"),
	fk(models.TableUsers, "bank_id", models.TableBanks, "id"),
	fk(models.TableUsers, "company_id", models.TableCompanies, "id"),
	fk(models.TableProducts, "category_id", models.TableCategories, "id"),
	fk(models.TableProductTags, "product_id", models.TableProducts, "id"),
	fk(models.TableProductImages, "product_id", models.TableProducts, "id"),
	fk(models.TableReviews, "product_id", models.TableProducts, "id"),
	fk(models.TableOrders, "user_id", models.TableUsers, "id"),
	fk(models.TableOrderItems, "order_id", models.TableOrders, "id"),
	fk(models.TableOrderItems, "product_id", models.TableProducts, "id"),
}

// StarRelations are the foreign keys of the star schema.
var StarRelations = []Relation{
	fk(models.StarFactOrders, "user_id", models.StarDimUsers, "user_id"),
	fk(models.StarFactOrders, "product_id", models.StarDimProducts, "product_id"),
	fk(models.StarFactOrders, "date_id", models.StarDimDate, "date_id"),
	fk(models.StarFactOrders, "location_id", models.StarDimLocations, "location_id"),
}

// SnowflakeRelations are the foreign keys of the snowflake schema.
var SnowflakeRelations = []Relation{
	fk(models.SnowDimCities, "state_id", models.SnowDimStates, "state_id"),
	fk(models.SnowDimUsers, "role_id", models.SnowDimRoles, "role_id"),
	fk(models.SnowDimUsers, "city_id", models.SnowDimCities, "city_id"),
	fk(models.SnowDimProducts, "category_id", models.SnowDimCategories, "category_id"),
	fk(models.SnowDimProducts, "brand_id", models.SnowDimBrands, "brand_id"),
	fk(models.SnowFactOrders, "user_id", models.SnowDimUsers, "user_id"),
	fk(models.SnowFactOrders, "product_id", models.SnowDimProducts, "product_id"),
	fk(models.SnowFactOrders, "date_id", models.SnowDimDate, "date_id"),
}
