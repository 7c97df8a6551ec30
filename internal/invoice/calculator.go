package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation marks pricing inputs that fail validation. Callers receive
// no partial totals when it is returned.
var ErrValidation = errors.New("invoice: validation failed")

var hundred = decimal.NewFromInt(100)

// termDays maps payment term codes to calendar days.
var termDays = map[PaymentTerm]int{
	TermNet15: 15,
	TermNet30: 30,
	TermNet45: 45,
	TermNet60: 60,
}

// PriceInvoice computes subtotal, discount, tax and total from line items
// and percentage rates:
//
//	subtotal = Σ(quantity * unitPrice)
//	discount = subtotal * discountRate / 100
//	tax      = (subtotal - discount) * taxRate / 100
//	total    = subtotal - discount + tax
//
// Amounts are exact decimals, so re-pricing unchanged inputs always yields
// identical results. Items with non-positive quantity or negative unit
// price, and rates outside [0,100], abort with ErrValidation.
func PriceInvoice(items []LineItem, taxRatePercent, discountRatePercent decimal.Decimal) (Totals, error) {
	if err := validateRate("tax rate", taxRatePercent); err != nil {
		return Totals{}, err
	}
	if err := validateRate("discount rate", discountRatePercent); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for idx, item := range items {
		if !item.Quantity.IsPositive() {
			return Totals{}, fmt.Errorf("%w: item %d: quantity must be positive", ErrValidation, idx)
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, fmt.Errorf("%w: item %d: unit price must not be negative", ErrValidation, idx)
		}
		subtotal = subtotal.Add(item.Amount())
	}

	// Shift(-2) divides by 100 exactly, without division precision loss.
	discount := subtotal.Mul(discountRatePercent).Shift(-2)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRatePercent).Shift(-2)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}, nil
}

// ComputeDueDate derives the due date from the issue date and payment term
// using calendar-day arithmetic. Unknown term codes are an error, never a
// silent default.
func ComputeDueDate(issueDate time.Time, term PaymentTerm) (time.Time, error) {
	days, err := TermDays(term)
	if err != nil {
		return time.Time{}, err
	}
	return issueDate.AddDate(0, 0, days), nil
}

// TermDays resolves a payment term code to its day count.
func TermDays(term PaymentTerm) (int, error) {
	days, ok := termDays[term]
	if !ok {
		return 0, fmt.Errorf("%w: unknown payment term %q", ErrValidation, term)
	}
	return days, nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: %s must be between 0 and 100", ErrValidation, name)
	}
	return nil
}
