package normalizer

import (
	"reshape/internal/integrity"
	"reshape/internal/models"
)

// Source names as they appear in findings.
const (
	SourceUsers    = "users"
	SourceProducts = "products"
	SourceCarts    = "carts"
)

// Validator checks raw input before transformation.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every problem found in raw. It never fails: missing sources become
// MissingSourceError and records without an upstream id become ValidationError.
func (v *Validator) Validate(raw *models.RawDataset) []error {
	var issues []error

	issues = appendMissing(issues, SourceUsers, raw.Users == nil, len(raw.Users))
	issues = appendMissing(issues, SourceProducts, raw.Products == nil, len(raw.Products))
	issues = appendMissing(issues, SourceCarts, raw.Carts == nil, len(raw.Carts))

	for i, u := range raw.Users {
		if u.ID == nil {
			issues = append(issues, missingField(models.TableUsers, i, "id", "user has no upstream id"))
		}
	}

	for i, p := range raw.Products {
		if p.ID == nil {
			issues = append(issues, missingField(models.TableProducts, i, "id", "product has no upstream id"))
		}
	}

	for i, c := range raw.Carts {
		if c.ID == nil {
			issues = append(issues, missingField(models.TableOrders, i, "id", "cart has no upstream id"))
			continue
		}

		if c.UserID == nil {
			issues = append(issues, missingField(models.TableOrders, *c.ID, "user_id", "cart has no userId"))
		}

		for j, line := range c.Products {
			if line.ID == nil {
				issues = append(issues, missingField(models.TableOrderItems, j, "product_id", "cart line has no product id"))
			}
		}
	}

	return issues
}

func appendMissing(issues []error, source string, absent bool, n int) []error {
	if n > 0 {
		return issues
	}

	return append(issues, &integrity.MissingSourceError{Source: source, Absent: absent})
}

func missingField(table string, row int, field, msg string) error {
	return &integrity.ValidationError{
		Table:   table,
		RowID:   row,
		Field:   field,
		Rule:    "required",
		Message: msg,
	}
}
