// Package pricing computes course fee quotes with the tiered multi-course
// discount.
package pricing

import (
	"github.com/shopspring/decimal"
)

// PriceTable maps a course id to its price. ok is false for unknown ids.
type PriceTable interface {
	Price(courseID string) (price int64, ok bool)
}

var (
	rateTwo   = decimal.New(5, -2)
	rateThree = decimal.New(10, -2)
	rateFour  = decimal.New(15, -2)
)

// DiscountRate returns the discount for n selected courses.
func DiscountRate(n int) decimal.Decimal {
	switch {
	case n <= 1:
		return decimal.Zero
	case n == 2:
		return rateTwo
	case n == 3:
		return rateThree
	default:
		return rateFour
	}
}

// Quote is derived from a selection and never persisted. Subtotal is exact;
// Discount and Total are unrounded until formatted.
type Quote struct {
	Count        int
	Subtotal     int64
	DiscountRate decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
}

// Compute prices ids against prices. Duplicate and unknown ids are ignored:
// they neither add to the subtotal nor move the discount tier.
func Compute(ids []string, prices PriceTable) Quote {
	seen := make(map[string]bool, len(ids))
	var (
		count    int
		subtotal int64
	)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		price, ok := prices.Price(id)
		if !ok {
			continue
		}
		count++
		subtotal += price
	}

	rate := DiscountRate(count)
	gross := decimal.NewFromInt(subtotal)
	discount := gross.Mul(rate)
	return Quote{
		Count:        count,
		Subtotal:     subtotal,
		DiscountRate: rate,
		Discount:     discount,
		Total:        gross.Sub(discount),
	}
}

func (q Quote) TotalString() string {
	return q.Total.StringFixed(2)
}

func (q Quote) DiscountString() string {
	return q.Discount.StringFixed(2)
}

// DiscountPercent formats the rate as a whole percentage, e.g. "15%".
func (q Quote) DiscountPercent() string {
	return q.DiscountRate.Shift(2).StringFixed(0) + "%"
}

// View is the presentation form of a Quote.
type View struct {
	Count           int    `json:"count"`
	Subtotal        int64  `json:"subtotal"`
	DiscountPercent string `json:"discountPercent"`
	Discount        string `json:"discount"`
	Total           string `json:"total"`
}

func (q Quote) View() View {
	return View{
		Count:           q.Count,
		Subtotal:        q.Subtotal,
		DiscountPercent: q.DiscountPercent(),
		Discount:        q.DiscountString(),
		Total:           q.TotalString(),
	}
}
