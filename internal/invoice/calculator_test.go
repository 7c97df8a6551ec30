package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestPriceInvoice(t *testing.T) {
	items := []LineItem{
		{Description: "Private office", Quantity: d("2"), UnitPrice: d("100000")},
		{Description: "Meeting room", Quantity: d("1"), UnitPrice: d("50000")},
	}

	totals, err := PriceInvoice(items, d("11"), d("10"))
	require.NoError(t, err)
	require.True(t, totals.Subtotal.Equal(d("250000")), "subtotal %s", totals.Subtotal)
	require.True(t, totals.DiscountAmount.Equal(d("25000")), "discount %s", totals.DiscountAmount)
	require.True(t, totals.TaxAmount.Equal(d("24750")), "tax %s", totals.TaxAmount)
	require.True(t, totals.Total.Equal(d("249750")), "total %s", totals.Total)
}

func TestPriceInvoiceTotalRelation(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		tax      string
		discount string
	}{
		{"no rates", []LineItem{{Quantity: d("3"), UnitPrice: d("75000")}}, "0", "0"},
		{"tax only", []LineItem{{Quantity: d("1"), UnitPrice: d("99999")}}, "11", "0"},
		{"discount only", []LineItem{{Quantity: d("7"), UnitPrice: d("12345")}}, "0", "12.5"},
		{"both", []LineItem{{Quantity: d("2.5"), UnitPrice: d("40000")}, {Quantity: d("1"), UnitPrice: d("1")}}, "11", "33.3"},
		{"full discount", []LineItem{{Quantity: d("4"), UnitPrice: d("25000")}}, "11", "100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := PriceInvoice(tc.items, d(tc.tax), d(tc.discount))
			require.NoError(t, err)

			want := totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
			require.True(t, totals.Total.Equal(want), "total %s want %s", totals.Total, want)
			require.False(t, totals.Total.IsNegative())
		})
	}
}

func TestPriceInvoiceIdempotent(t *testing.T) {
	items := []LineItem{
		{Quantity: d("3"), UnitPrice: d("33333")},
		{Quantity: d("1.5"), UnitPrice: d("10000")},
	}

	first, err := PriceInvoice(items, d("11"), d("7.5"))
	require.NoError(t, err)
	second, err := PriceInvoice(items, d("11"), d("7.5"))
	require.NoError(t, err)

	require.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	require.Equal(t, first.DiscountAmount.String(), second.DiscountAmount.String())
	require.Equal(t, first.TaxAmount.String(), second.TaxAmount.String())
	require.Equal(t, first.Total.String(), second.Total.String())
}

func TestPriceInvoiceEmptyItems(t *testing.T) {
	totals, err := PriceInvoice(nil, d("11"), d("10"))
	require.NoError(t, err)
	require.True(t, totals.Subtotal.IsZero())
	require.True(t, totals.DiscountAmount.IsZero())
	require.True(t, totals.TaxAmount.IsZero())
	require.True(t, totals.Total.IsZero())
}

func TestPriceInvoiceValidation(t *testing.T) {
	valid := []LineItem{{Quantity: d("1"), UnitPrice: d("1000")}}

	cases := []struct {
		name     string
		items    []LineItem
		tax      string
		discount string
	}{
		{"zero quantity", []LineItem{{Quantity: d("0"), UnitPrice: d("1000")}}, "0", "0"},
		{"negative quantity", []LineItem{{Quantity: d("-1"), UnitPrice: d("1000")}}, "0", "0"},
		{"negative price", []LineItem{{Quantity: d("1"), UnitPrice: d("-1")}}, "0", "0"},
		{"tax above 100", valid, "100.1", "0"},
		{"negative tax", valid, "-1", "0"},
		{"discount above 100", valid, "0", "101"},
		{"negative discount", valid, "0", "-0.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PriceInvoice(tc.items, d(tc.tax), d(tc.discount))
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestComputeDueDate(t *testing.T) {
	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		term PaymentTerm
		days int
	}{
		{TermNet15, 15},
		{TermNet30, 30},
		{TermNet45, 45},
		{TermNet60, 60},
	}
	for _, tc := range cases {
		due, err := ComputeDueDate(issue, tc.term)
		require.NoError(t, err)
		require.Equal(t, issue.AddDate(0, 0, tc.days), due)
	}
}

func TestComputeDueDateUnknownTerm(t *testing.T) {
	_, err := ComputeDueDate(time.Now(), PaymentTerm("NET90"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestComputeDueDateCrossesMonthEnd(t *testing.T) {
	issue := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	due, err := ComputeDueDate(issue, TermNet30)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), due)
}
