package dimension

import (
	"github.com/shopspring/decimal"

	"reshape/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Amounts are the monetary columns of a fact line.
type Amounts struct {
	UnitPrice          float64
	DiscountPercentage float64
	Subtotal           float64
	DiscountAmount     float64
	TotalAmount        float64
}

// ComputeAmounts derives subtotal, discount and total for quantity units at unitPrice
// with a percentage discount. Discount and total are rounded to cents, half away from
// zero, so subtotal - discount = total holds exactly at two decimals.
func ComputeAmounts(unitPrice float64, quantity int, discountPct float64) Amounts {
	price := decimal.NewFromFloat(unitPrice)
	pct := decimal.NewFromFloat(discountPct)

	subtotal := price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	discount := subtotal.Mul(pct).Div(hundred).Round(2)
	total := subtotal.Sub(discount).Round(2)

	return Amounts{
		UnitPrice:          unitPrice,
		DiscountPercentage: discountPct,
		Subtotal:           subtotal.InexactFloat64(),
		DiscountAmount:     discount.InexactFloat64(),
		TotalAmount:        total.InexactFloat64(),
	}
}

// LineAmounts computes amounts for a normalized order item. Missing price or discount
// count as zero.
func LineAmounts(item *models.OrderItem) Amounts {
	return ComputeAmounts(deref(item.Price), item.Quantity, deref(item.DiscountPercentage))
}

// Status returns the order status, or "completed" when unset.
func Status(order *models.Order) string {
	if order == nil || order.Status == "" {
		return models.DefaultStatus
	}

	return order.Status
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}

	return *f
}
