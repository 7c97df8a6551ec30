package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spaceworks-id/spaceworks/internal/invoice"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func paidInvoice(total string, paidAt time.Time) invoice.Invoice {
	at := paidAt
	return invoice.Invoice{
		Status: invoice.StatusPaid,
		Totals: invoice.Totals{Total: d(total)},
		PaidAt: &at,
	}
}

func outstandingInvoice(total string, dueDate time.Time) invoice.Invoice {
	return invoice.Invoice{
		Status:  invoice.StatusSent,
		Totals:  invoice.Totals{Total: d(total)},
		DueDate: dueDate,
	}
}

var asOf = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestBuildSnapshotRequiresAsOf(t *testing.T) {
	_, err := BuildSnapshot(nil, Params{})
	require.Error(t, err)
}

func TestRevenueGrowth(t *testing.T) {
	thisMonth := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	invoices := []invoice.Invoice{
		paidInvoice("100", thisMonth),
		paidInvoice("200", thisMonth),
		paidInvoice("300", thisMonth),
		paidInvoice("150", lastMonth),
	}

	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.True(t, snapshot.Revenue.Current.Equal(d("600")), "current %s", snapshot.Revenue.Current)
	require.True(t, snapshot.Revenue.Previous.Equal(d("150")))
	require.InDelta(t, 300.0, snapshot.Revenue.GrowthPercent, 1e-9)
}

func TestRevenueGrowthZeroBaseline(t *testing.T) {
	invoices := []invoice.Invoice{
		paidInvoice("500", time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)),
	}
	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Zero(t, snapshot.Revenue.GrowthPercent, "zero denominator resolves to 0, not NaN")
}

func TestRevenueGrowthNegative(t *testing.T) {
	invoices := []invoice.Invoice{
		paidInvoice("100", time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)),
		paidInvoice("400", time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)),
	}
	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.InDelta(t, -75.0, snapshot.Revenue.GrowthPercent, 1e-9)
}

func TestTopDimensionsSortedAndCapped(t *testing.T) {
	paidAt := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	names := []struct {
		service string
		total   string
	}{
		{"Private Office", "600"},
		{"Dedicated Desk", "500"},
		{"Meeting Room", "400"},
		{"Hot Desk", "300"},
		{"Virtual Office", "200"},
		{"Event Space", "100"},
	}
	var invoices []invoice.Invoice
	for _, n := range names {
		inv := paidInvoice(n.total, paidAt)
		inv.ServiceName = n.service
		invoices = append(invoices, inv)
	}

	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, snapshot.TopServices, 5, "only top 5 shown")
	for i := 1; i < len(snapshot.TopServices); i++ {
		require.True(t, snapshot.TopServices[i-1].Amount.GreaterThanOrEqual(snapshot.TopServices[i].Amount),
			"rows sorted descending by amount")
	}
	require.Equal(t, "Private Office", snapshot.TopServices[0].Name)

	var percentSum float64
	for _, slice := range snapshot.TopServices {
		percentSum += slice.Percent
	}
	require.LessOrEqual(t, percentSum, 100.0+1e-9, "top-5 percentages never exceed combined revenue")
}

func TestDimensionDefaultsToUnknown(t *testing.T) {
	paidAt := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	blank := paidInvoice("250", paidAt)
	blank.ServiceName = "  "
	blank.CityName = ""

	snapshot, err := BuildSnapshot([]invoice.Invoice{blank}, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Equal(t, UnknownService, snapshot.TopServices[0].Name)
	require.Equal(t, UnknownCity, snapshot.TopCities[0].Name)
}

func TestDimensionPercentOfCombinedPeriods(t *testing.T) {
	current := paidInvoice("300", time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))
	current.ServiceName = "Private Office"
	previous := paidInvoice("100", time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC))
	previous.ServiceName = "Private Office"

	snapshot, err := BuildSnapshot([]invoice.Invoice{current, previous}, Params{AsOf: asOf})
	require.NoError(t, err)
	// 400 of 400 combined revenue.
	require.InDelta(t, 100.0, snapshot.TopServices[0].Percent, 1e-9)
}

func TestAgingBucketsPartition(t *testing.T) {
	invoices := []invoice.Invoice{
		outstandingInvoice("100", asOf.AddDate(0, 0, 10)),  // not yet due
		outstandingInvoice("200", asOf.AddDate(0, 0, -15)), // 1..30
		outstandingInvoice("300", asOf.AddDate(0, 0, -45)), // 31..60
		outstandingInvoice("400", asOf.AddDate(0, 0, -75)), // 61..90
		outstandingInvoice("500", asOf.AddDate(0, 0, -120)),
	}
	// Paid and cancelled invoices never enter aging.
	invoices = append(invoices, paidInvoice("999", asOf))
	cancelled := outstandingInvoice("888", asOf.AddDate(0, 0, -200))
	cancelled.Status = invoice.StatusCancelled
	invoices = append(invoices, cancelled)

	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	aging := snapshot.Aging
	require.True(t, aging.Current.Equal(d("100")))
	require.True(t, aging.Days30.Equal(d("200")))
	require.True(t, aging.Days60.Equal(d("300")), "45 days past due belongs to the 31-60 bucket")
	require.True(t, aging.Days90.Equal(d("400")))
	require.True(t, aging.Over90.Equal(d("500")))
	require.True(t, aging.TotalOutstanding.Equal(d("1500")))

	bucketSum := aging.Current.Add(aging.Days30).Add(aging.Days60).Add(aging.Days90).Add(aging.Over90).Add(aging.Unbucketed)
	require.True(t, bucketSum.Equal(aging.TotalOutstanding), "buckets partition the outstanding set")
	require.Zero(t, snapshot.Quality.SkippedAging)
}

func TestAgingBucketBoundaries(t *testing.T) {
	cases := []struct {
		daysPastDue int
		bucket      string
	}{
		{0, "current"},
		{1, "days30"},
		{30, "days30"},
		{31, "days60"},
		{60, "days60"},
		{61, "days90"},
		{90, "days90"},
		{91, "over90"},
	}
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		inv := outstandingInvoice("100", base.AddDate(0, 0, -tc.daysPastDue))
		snapshot, err := BuildSnapshot([]invoice.Invoice{inv}, Params{AsOf: base})
		require.NoError(t, err)
		aging := snapshot.Aging
		got := map[string]decimal.Decimal{
			"current": aging.Current,
			"days30":  aging.Days30,
			"days60":  aging.Days60,
			"days90":  aging.Days90,
			"over90":  aging.Over90,
		}
		for name, amount := range got {
			if name == tc.bucket {
				require.True(t, amount.Equal(d("100")), "%d days should land in %s", tc.daysPastDue, tc.bucket)
			} else {
				require.True(t, amount.IsZero(), "%d days leaked into %s", tc.daysPastDue, name)
			}
		}
	}
}

func TestAgingMissingDueDate(t *testing.T) {
	withDue := outstandingInvoice("400", asOf.AddDate(0, 0, -5))
	noDue := invoice.Invoice{
		Status: invoice.StatusSent,
		Totals: invoice.Totals{Total: d("600")},
	}

	snapshot, err := BuildSnapshot([]invoice.Invoice{withDue, noDue}, Params{AsOf: asOf})
	require.NoError(t, err)
	require.True(t, snapshot.Aging.TotalOutstanding.Equal(d("1000")), "record without due date still counts in total outstanding")
	require.True(t, snapshot.Aging.Unbucketed.Equal(d("600")))
	require.Equal(t, 1, snapshot.Quality.SkippedAging)
}

func TestMonthlyCashflowSeries(t *testing.T) {
	invoices := []invoice.Invoice{
		paidInvoice("100", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)),
		paidInvoice("200", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)),
		paidInvoice("300", time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)),
		// Outside the trailing window.
		paidInvoice("999", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)),
	}

	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, snapshot.Cashflow, 6)
	require.Equal(t, "2026-03", snapshot.Cashflow[0].Month, "oldest month first")
	require.Equal(t, "2026-08", snapshot.Cashflow[5].Month)
	require.True(t, snapshot.Cashflow[0].Inflow.Equal(d("100")))
	require.True(t, snapshot.Cashflow[4].Inflow.Equal(d("200")))
	require.True(t, snapshot.Cashflow[5].Inflow.Equal(d("300")))
	for _, point := range snapshot.Cashflow {
		require.True(t, point.Outflow.IsZero(), "no expense ledger, outflow is defined as zero")
		require.True(t, point.Net.Equal(point.Inflow))
	}
}

func TestMissingPaidDateExcludedFromSeriesButCounted(t *testing.T) {
	noDate := invoice.Invoice{
		Status: invoice.StatusPaid,
		Totals: invoice.Totals{Total: d("500"), TaxAmount: d("50")},
	}
	dated := paidInvoice("300", time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	dated.Totals.TaxAmount = d("30")

	snapshot, err := BuildSnapshot([]invoice.Invoice{noDate, dated}, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Quality.SkippedCashflow)

	var inflowSum decimal.Decimal
	for _, point := range snapshot.Cashflow {
		inflowSum = inflowSum.Add(point.Inflow)
	}
	require.True(t, inflowSum.Equal(d("300")), "undated payment stays out of the series")
	require.True(t, snapshot.Tax.TotalRevenue.Equal(d("800")), "but contributes to total revenue")
	require.True(t, snapshot.Tax.TotalTax.Equal(d("80")), "and to total tax")
}

func TestTaxSummaryOmitsZeroMonths(t *testing.T) {
	invoices := []invoice.Invoice{
		paidInvoice("250000", time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)),
		paidInvoice("100000", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)),
	}
	invoices[0].Totals.TaxAmount = d("24750")
	invoices[1].Totals.TaxAmount = d("9900")

	snapshot, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, snapshot.Tax.Months, 2, "zero-revenue months omitted from detail")
	require.Equal(t, "2026-06", snapshot.Tax.Months[0].Month)
	require.Equal(t, "2026-08", snapshot.Tax.Months[1].Month)
	require.True(t, snapshot.Tax.Months[0].Tax.Equal(d("24750")))
	require.True(t, snapshot.Tax.TotalTax.Equal(d("34650")))
}

func TestSnapshotDeterministicAcrossOrdering(t *testing.T) {
	invoices := []invoice.Invoice{
		paidInvoice("100", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		paidInvoice("200", time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)),
		outstandingInvoice("300", asOf.AddDate(0, 0, -40)),
		outstandingInvoice("400", asOf.AddDate(0, 0, 3)),
	}
	invoices[0].ServiceName = "Hot Desk"
	invoices[1].ServiceName = "Private Office"

	forward, err := BuildSnapshot(invoices, Params{AsOf: asOf})
	require.NoError(t, err)

	reversed := make([]invoice.Invoice, len(invoices))
	for i, inv := range invoices {
		reversed[len(invoices)-1-i] = inv
	}
	backward, err := BuildSnapshot(reversed, Params{AsOf: asOf})
	require.NoError(t, err)

	require.Equal(t, forward, backward, "aggregation is independent of input ordering")
}

func TestExplicitPeriodBounds(t *testing.T) {
	params := Params{
		AsOf:          asOf,
		CurrentStart:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		CurrentEnd:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		PreviousStart: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PreviousEnd:   time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
	}
	invoices := []invoice.Invoice{
		paidInvoice("100", time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)),
		paidInvoice("900", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)), // outside custom window
		paidInvoice("50", time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)),
	}

	snapshot, err := BuildSnapshot(invoices, params)
	require.NoError(t, err)
	require.True(t, snapshot.Revenue.Current.Equal(d("100")))
	require.True(t, snapshot.Revenue.Previous.Equal(d("50")))
}
