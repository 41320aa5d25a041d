// Package integrity checks produced tables and documents for broken references and
// invalid field values, and reports the findings without modifying anything.
package integrity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"reshape/internal/models"
)

// Age bounds outside which a user's age is suspicious.
const (
	minAge = 0
	maxAge = 120
)

type warningRule func(row any) []*FieldWarning

// Checker validates table sets.
type Checker struct {
	validate *validator.Validate
	warnings map[string]warningRule
	strict   bool
}

// NewChecker creates a checker. When strict is set, warnings fail reports.
func NewChecker(strict bool) *Checker {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &Checker{
		validate: v,
		strict:   strict,
		warnings: map[string]warningRule{
			models.TableUsers:     userWarnings,
			models.TableProducts:  productWarnings,
			models.TableReviews:   reviewWarnings,
			models.TableAddresses: addressWarnings,
		},
	}
}

// Check validates every table and every relation. Tables named by a relation but absent
// from tables count as empty.
func (c *Checker) Check(layout string, tables []models.Table, relations []Relation) *Report {
	report := NewReport(layout)
	report.Strict = c.strict

	byName := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
		report.Counts[t.Name] = t.Len()

		if t.Len() == 0 {
			report.AddWarning(&FieldWarning{Table: t.Name, Message: "table is empty"})
			continue
		}

		c.checkFields(report, t)
	}

	for _, rel := range relations {
		checkRelation(report, byName, rel)
	}

	return report
}

// CheckTableSet checks the normalized layout, including problems recorded while
// normalizing: missing sources become warnings, skipped records and unresolved
// references become errors.
func (c *Checker) CheckTableSet(ts *models.TableSet) *Report {
	report := c.Check(models.LayoutNormalized, ts.Tables(), NormalizedRelations)

	for _, issue := range ts.Issues {
		var missing *MissingSourceError
		if errors.As(issue, &missing) {
			report.AddWarning(issue)
		} else {
			report.AddError(issue)
		}
	}

	for _, ref := range ts.Unresolved {
		report.AddError(&ReferentialIntegrityError{
			Table:  ref.Table,
			RowID:  ref.RowID,
			Column: ref.Column,
			Target: ref.Target,
			Value:  fmt.Sprintf("source id %d", ref.SourceValue),
		})
	}

	return report
}

// CheckDocuments verifies that embedded user and product references in orders point at
// documents of the same set.
func (c *Checker) CheckDocuments(docs *models.DocumentSet) *Report {
	report := NewReport(models.LayoutDocument)
	report.Strict = c.strict

	for name, n := range docs.Counts() {
		report.Counts[name] = n
		if n == 0 {
			report.AddWarning(&FieldWarning{Table: name, Message: "collection is empty"})
		}
	}

	users := make(map[int]bool, len(docs.Users))
	for _, u := range docs.Users {
		users[u.ID] = true
	}

	products := make(map[int]bool, len(docs.Products))
	for _, p := range docs.Products {
		products[p.ID] = true
	}

	for _, o := range docs.Orders {
		if o.User != nil && !users[o.User.ID] {
			report.AddError(&ReferentialIntegrityError{
				Table: models.CollectionOrders, RowID: o.ID, Column: "user.id",
				Target: models.CollectionUsers, Value: o.User.ID,
			})
		}

		for _, item := range o.Items {
			if !products[item.ProductID] {
				report.AddError(&ReferentialIntegrityError{
					Table: models.CollectionOrders, RowID: o.ID, Column: "items.product_id",
					Target: models.CollectionProducts, Value: item.ProductID,
				})
			}

			if item.Quantity <= 0 {
				report.AddError(&ValidationError{
					Table: models.CollectionOrders, RowID: o.ID, Field: "items.quantity",
					Rule: "gt", Message: "quantity must be positive",
				})
			}
		}
	}

	return report
}

func (c *Checker) checkFields(report *Report, t models.Table) {
	ids := t.Column(t.PrimaryKey())
	rule := c.warnings[t.Name]

	t.Each(func(i int, row any) {
		rowID := 0
		if ids != nil {
			rowID, _ = toInt(ids[i])
		}

		if err := c.validate.Struct(row); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				report.AddError(&ValidationError{Table: t.Name, RowID: rowID, Message: err.Error()})
				return
			}

			for _, fe := range fieldErrs {
				report.AddError(&ValidationError{
					Table:   t.Name,
					RowID:   rowID,
					Field:   fe.Field(),
					Rule:    fe.Tag(),
					Message: describe(fe),
				})
			}
		}

		if rule == nil {
			return
		}

		for _, w := range rule(row) {
			w.Table = t.Name
			w.RowID = rowID
			report.AddWarning(w)
		}
	})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field"
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

func checkRelation(report *Report, tables map[string]models.Table, rel Relation) {
	child, ok := tables[rel.Table]
	if !ok {
		return
	}

	keys := make(map[int]bool)
	if target, ok := tables[rel.Target]; ok {
		for _, v := range target.Column(rel.TargetColumn) {
			if k, ok := toInt(v); ok {
				keys[k] = true
			}
		}
	}

	ids := child.Column(child.PrimaryKey())
	for i, v := range child.Column(rel.Column) {
		if v == nil {
			continue
		}

		k, ok := toInt(v)
		if ok && keys[k] {
			continue
		}

		rowID := 0
		if ids != nil {
			rowID, _ = toInt(ids[i])
		}

		report.AddError(&ReferentialIntegrityError{
			Table:  rel.Table,
			RowID:  rowID,
			Column: rel.Column,
			Target: rel.Target,
			Value:  v,
		})
	}
}

func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	default:
		return 0, false
	}
}

func userWarnings(row any) []*FieldWarning {
	u, ok := row.(models.User)
	if !ok {
		return nil
	}

	var out []*FieldWarning
	if u.Age != nil && (*u.Age <= minAge || *u.Age >= maxAge) {
		out = append(out, &FieldWarning{Field: "age", Message: fmt.Sprintf("suspicious age %d", *u.Age)})
	}

	if u.Email != "" && !strings.Contains(u.Email, "@") {
		out = append(out, &FieldWarning{Field: "email", Message: fmt.Sprintf("malformed email %q", u.Email)})
	}

	return out
}

func productWarnings(row any) []*FieldWarning {
	p, ok := row.(models.Product)
	if !ok {
		return nil
	}

	var out []*FieldWarning
	if p.Stock != nil && *p.Stock < 0 {
		out = append(out, &FieldWarning{Field: "stock", Message: fmt.Sprintf("negative stock %d", *p.Stock)})
	}

	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		out = append(out, &FieldWarning{Field: "rating", Message: fmt.Sprintf("rating %.2f outside [0, 5]", *p.Rating)})
	}

	return out
}

func reviewWarnings(row any) []*FieldWarning {
	r, ok := row.(models.Review)
	if !ok || r.Rating == nil || (*r.Rating >= 0 && *r.Rating <= 5) {
		return nil
	}

	return []*FieldWarning{{Field: "rating", Message: fmt.Sprintf("rating %d outside [0, 5]", *r.Rating)}}
}

func addressWarnings(row any) []*FieldWarning {
	a, ok := row.(models.Address)
	if !ok || a.City != "" || a.State != "" {
		return nil
	}

	return []*FieldWarning{{Field: "city", Message: "address has neither city nor state"}}
}
