package integrity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reshape/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func findKind(errs []error, k Kind) int {
	n := 0
	for _, err := range errs {
		if KindOf(err) == k {
			n++
		}
	}

	return n
}

func validTableSet() *models.TableSet {
	ts := models.NewTableSet()
	ts.Addresses = []models.Address{{ID: 1, City: "Phoenix", State: "Mississippi"}}
	ts.Banks = []models.Bank{{ID: 1}}
	ts.Companies = []models.Company{{ID: 1, AddressID: intPtr(1)}}
	ts.Categories = []models.Category{{ID: 1, Name: "Smartphones", Slug: "smartphones"}}
	ts.Users = []models.User{{ID: 1, Email: "a@b.c", Username: "a", Age: intPtr(30), AddressID: intPtr(1), BankID: intPtr(1), CompanyID: intPtr(1)}}
	ts.Products = []models.Product{{ID: 1, Title: "Phone", Price: floatPtr(10), CategoryID: intPtr(1)}}
	ts.ProductTags = []models.ProductTag{{ID: 1, ProductID: 1, Tag: "phone"}}
	ts.ProductImages = []models.ProductImage{{ID: 1, ProductID: 1}}
	ts.Reviews = []models.Review{{ID: 1, ProductID: 1, Rating: intPtr(5)}}
	ts.Orders = []models.Order{{ID: 1, UserID: intPtr(1), Total: floatPtr(30)}}
	ts.OrderItems = []models.OrderItem{{ID: 1, OrderID: 1, ProductID: intPtr(1), Quantity: 3}}

	return ts
}

func TestCheckTableSet_Clean(t *testing.T) {
	report := NewChecker(false).CheckTableSet(validTableSet())

	assert.True(t, report.Passed())
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 1, report.Counts[models.TableOrderItems])
	assert.NoError(t, report.Err())
}

func TestCheckTableSet_DanglingForeignKey(t *testing.T) {
	ts := validTableSet()
	ts.Orders[0].UserID = intPtr(99)

	report := NewChecker(false).CheckTableSet(ts)

	assert.False(t, report.Passed())
	require.Len(t, report.Errors, 1)

	var ref *ReferentialIntegrityError
	require.ErrorAs(t, report.Errors[0], &ref)
	assert.Equal(t, models.TableOrders, ref.Table)
	assert.Equal(t, "user_id", ref.Column)
	assert.Equal(t, models.TableUsers, ref.Target)
	assert.Equal(t, 1, ref.RowID)
	assert.Equal(t, 99, ref.Value)
}

func TestCheckTableSet_NullForeignKeyIsFine(t *testing.T) {
	ts := validTableSet()
	ts.Users[0].BankID = nil

	report := NewChecker(false).CheckTableSet(ts)
	assert.True(t, report.Passed())
}

func TestCheckTableSet_FieldErrors(t *testing.T) {
	ts := validTableSet()
	ts.Users[0].Email = ""
	ts.Products[0].Price = floatPtr(-1)
	ts.Orders[0].Total = floatPtr(-5)
	ts.OrderItems[0].Quantity = 0

	report := NewChecker(false).CheckTableSet(ts)

	assert.Equal(t, 4, findKind(report.Errors, KindValidation))

	fields := map[string]string{}
	for _, err := range report.Errors {
		var v *ValidationError
		if errors.As(err, &v) {
			fields[v.Table] = v.Field
		}
	}

	assert.Equal(t, map[string]string{
		models.TableUsers:      "email",
		models.TableProducts:   "price",
		models.TableOrders:     "total",
		models.TableOrderItems: "quantity",
	}, fields)
}

func TestCheckTableSet_Warnings(t *testing.T) {
	ts := validTableSet()
	ts.Users[0].Age = intPtr(150)
	ts.Users[0].Email = "not-an-email"
	ts.Products[0].Stock = intPtr(-2)
	ts.Products[0].Rating = floatPtr(5.5)
	ts.Addresses[0].City = ""
	ts.Addresses[0].State = ""
	ts.Reviews[0].Rating = intPtr(9)

	report := NewChecker(false).CheckTableSet(ts)

	assert.True(t, report.Passed())
	assert.Len(t, report.Warnings, 6)

	strict := NewChecker(true).CheckTableSet(ts)
	assert.False(t, strict.Passed())
}

func TestCheckTableSet_EmptyTableWarns(t *testing.T) {
	ts := validTableSet()
	ts.Reviews = []models.Review{}

	report := NewChecker(false).CheckTableSet(ts)

	assert.True(t, report.Passed())
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Error(), "empty")
}

func TestCheckTableSet_IssuesAndUnresolved(t *testing.T) {
	ts := validTableSet()
	ts.Issues = []error{
		&MissingSourceError{Source: "carts", Absent: true},
		&ValidationError{Table: models.TableUsers, Field: "id", Message: "missing"},
	}
	ts.Unresolved = []models.UnresolvedReference{
		{Table: models.TableOrders, RowID: 1, Column: "user_id", Target: models.TableUsers, SourceValue: 42},
	}

	report := NewChecker(false).CheckTableSet(ts)

	assert.Equal(t, 1, findKind(report.Warnings, KindMissingSource))
	assert.Equal(t, 1, findKind(report.Errors, KindValidation))
	assert.Equal(t, 1, findKind(report.Errors, KindReferential))
	assert.Contains(t, report.Err().Error(), "source id 42")
	assert.Equal(t, map[Kind]int{KindValidation: 1, KindReferential: 1}, report.ErrorsByKind())
}

func TestCheck_DoesNotMutate(t *testing.T) {
	ts := validTableSet()
	ts.Orders[0].UserID = intPtr(99)
	before := *ts.Orders[0].UserID

	NewChecker(false).CheckTableSet(ts)

	assert.Equal(t, before, *ts.Orders[0].UserID)
}

func TestCheck_StarRelations(t *testing.T) {
	tables := []models.Table{
		models.NewTable(models.StarDimUsers, []models.StarDimUser{{UserID: 1}}),
		models.NewTable(models.StarDimProducts, []models.StarDimProduct{{ProductID: 1}}),
		models.NewTable(models.StarDimDate, []models.DateRow{{DateID: 1}}),
		models.NewTable(models.StarDimLocations, []models.StarDimLocation{{LocationID: 1}}),
		models.NewTable(models.StarFactOrders, []models.StarFactOrder{
			{FactID: 1, UserID: intPtr(1), ProductID: intPtr(1), DateID: 1, LocationID: intPtr(1), Quantity: 1},
			{FactID: 2, UserID: intPtr(1), ProductID: intPtr(1), DateID: 20990101, Quantity: 1},
		}),
	}

	report := NewChecker(false).Check(models.LayoutStar, tables, StarRelations)

	require.Len(t, report.Errors, 1)

	var ref *ReferentialIntegrityError
	require.ErrorAs(t, report.Errors[0], &ref)
	assert.Equal(t, "date_id", ref.Column)
	assert.Equal(t, 2, ref.RowID)
}

func TestCheckDocuments(t *testing.T) {
	docs := &models.DocumentSet{
		Users:    []models.UserDocument{{ID: 1}},
		Products: []models.ProductDocument{{ID: 1}},
		Orders: []models.OrderDocument{
			{ID: 1, User: &models.OrderUserDoc{ID: 1}, Items: []models.OrderItemDoc{{ProductID: 1, Quantity: 1}}},
			{ID: 2, User: &models.OrderUserDoc{ID: 5}, Items: []models.OrderItemDoc{{ProductID: 9, Quantity: 0}}},
		},
	}

	report := NewChecker(false).CheckDocuments(docs)

	assert.Equal(t, 2, findKind(report.Errors, KindReferential))
	assert.Equal(t, 1, findKind(report.Errors, KindValidation))
	assert.Equal(t, 2, report.Counts[models.CollectionOrders])
}

func TestReport_Merge(t *testing.T) {
	a := NewReport("a")
	a.Counts["x"] = 1
	a.AddWarning(&FieldWarning{Table: "x", Message: "w"})

	b := NewReport("b")
	b.Counts["y"] = 2
	b.AddError(&ValidationError{Table: "y"})

	a.Merge(b)
	a.Merge(nil)

	assert.Equal(t, map[string]int{"x": 1, "y": 2}, a.Counts)
	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
	assert.False(t, a.Passed())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLoad, KindOf(&LoadError{Table: "users", Err: errors.New("boom")}))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
