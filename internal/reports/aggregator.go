// Package reports turns a snapshot of priced invoices into the dashboard
// views of the admin console: revenue growth, dimension breakdowns, aging
// receivables, trailing cash flow, and a tax summary. The computation is a
// single stateless pass over in-memory records; the caller supplies the
// "as of" timestamp so results are reproducible.
package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spaceworks-id/spaceworks/internal/invoice"
)

const (
	// UnknownService buckets paid invoices without a service dimension.
	UnknownService = "Unknown Service"
	// UnknownCity buckets paid invoices without a city dimension.
	UnknownCity = "Unknown City"

	defaultTrailingMonths = 6
	defaultTopN           = 5
)

// Params scopes one snapshot computation. Zero period bounds default to the
// calendar month of AsOf versus the month before it.
type Params struct {
	AsOf           time.Time
	CurrentStart   time.Time
	CurrentEnd     time.Time
	PreviousStart  time.Time
	PreviousEnd    time.Time
	TrailingMonths int
	TopN           int
}

// PeriodRevenue compares paid revenue across the two periods.
type PeriodRevenue struct {
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	GrowthPercent float64         `json:"growthPercent"`
}

// DimensionSlice is one row of a top-N revenue breakdown.
type DimensionSlice struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// AgingSummary partitions outstanding receivables into exclusive
// days-past-due buckets. Buckets always sum to TotalOutstanding minus the
// amounts of records without a due date, which are counted in
// TotalOutstanding but reported through Unbucketed.
type AgingSummary struct {
	Current          decimal.Decimal `json:"current"`
	Days30           decimal.Decimal `json:"days30"`
	Days60           decimal.Decimal `json:"days60"`
	Days90           decimal.Decimal `json:"days90"`
	Over90           decimal.Decimal `json:"over90"`
	Unbucketed       decimal.Decimal `json:"unbucketed"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// CashflowPoint is one month of the trailing cash-flow series. Outflow is
// fixed at zero until an expense ledger exists.
type CashflowPoint struct {
	Month   string          `json:"month"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// TaxMonth is one detail row of the tax summary.
type TaxMonth struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Tax     decimal.Decimal `json:"tax"`
}

// TaxSummary reports collected tax per month plus overall totals. The
// totals include every paid invoice, also those missing a paid date and
// therefore absent from the month detail.
type TaxSummary struct {
	Months       []TaxMonth      `json:"months"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalTax     decimal.Decimal `json:"totalTax"`
}

// DataQuality counts records excluded from individual views so the console
// can surface a non-blocking notice instead of silently under-reporting.
type DataQuality struct {
	SkippedAging    int `json:"skippedAging"`
	SkippedCashflow int `json:"skippedCashflow"`
}

// Snapshot is the full output of one aggregation pass. It is recomputed on
// every call and holds no identity.
type Snapshot struct {
	AsOf        time.Time        `json:"asOf"`
	Revenue     PeriodRevenue    `json:"revenue"`
	TopServices []DimensionSlice `json:"topServices"`
	TopCities   []DimensionSlice `json:"topCities"`
	Aging       AgingSummary     `json:"aging"`
	Cashflow    []CashflowPoint  `json:"cashflow"`
	Tax         TaxSummary       `json:"tax"`
	Quality     DataQuality      `json:"quality"`
}

// record is the canonical aggregation input. normalize resolves every raw
// invoice to this shape once, so the view algorithms never branch on field
// presence.
type record struct {
	status      invoice.Status
	total       decimal.Decimal
	tax         decimal.Decimal
	serviceName string
	cityName    string
	dueDate     time.Time
	paidAt      *time.Time
}

// BuildSnapshot computes all report views over the invoice collection as of
// params.AsOf. Data-quality issues on single records never abort the whole
// report.
func BuildSnapshot(invoices []invoice.Invoice, params Params) (Snapshot, error) {
	if params.AsOf.IsZero() {
		return Snapshot{}, fmt.Errorf("reports: as-of timestamp required")
	}
	params = withDefaults(params)

	records := make([]record, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, normalize(inv))
	}

	snapshot := Snapshot{AsOf: params.AsOf}
	snapshot.Revenue = revenueByPeriod(records, params)
	combined := snapshot.Revenue.Current.Add(snapshot.Revenue.Previous)
	snapshot.TopServices = revenueByDimension(records, func(r record) string { return r.serviceName }, combined, params.TopN)
	snapshot.TopCities = revenueByDimension(records, func(r record) string { return r.cityName }, combined, params.TopN)
	snapshot.Aging = agingReceivables(records, params.AsOf, &snapshot.Quality)
	snapshot.Cashflow = monthlyCashflow(records, params, &snapshot.Quality)
	snapshot.Tax = taxSummary(records, params)
	return snapshot, nil
}

func withDefaults(params Params) Params {
	if params.TrailingMonths <= 0 {
		params.TrailingMonths = defaultTrailingMonths
	}
	if params.TopN <= 0 {
		params.TopN = defaultTopN
	}
	if params.CurrentStart.IsZero() || params.CurrentEnd.IsZero() {
		params.CurrentStart = monthStart(params.AsOf)
		params.CurrentEnd = params.CurrentStart.AddDate(0, 1, 0)
	}
	if params.PreviousStart.IsZero() || params.PreviousEnd.IsZero() {
		params.PreviousEnd = params.CurrentStart
		params.PreviousStart = params.CurrentStart.AddDate(0, -1, 0)
	}
	return params
}

func normalize(inv invoice.Invoice) record {
	rec := record{
		status:      inv.Status,
		total:       inv.Totals.Total,
		tax:         inv.Totals.TaxAmount,
		serviceName: strings.TrimSpace(inv.ServiceName),
		cityName:    strings.TrimSpace(inv.CityName),
		dueDate:     inv.DueDate,
		paidAt:      inv.PaidAt,
	}
	if rec.serviceName == "" {
		rec.serviceName = UnknownService
	}
	if rec.cityName == "" {
		rec.cityName = UnknownCity
	}
	return rec
}

// revenueByPeriod partitions paid revenue into the current and previous
// period. A zero previous period resolves to 0% growth, never NaN.
func revenueByPeriod(records []record, params Params) PeriodRevenue {
	current := decimal.Zero
	previous := decimal.Zero
	for _, rec := range records {
		if rec.status != invoice.StatusPaid || rec.paidAt == nil {
			continue
		}
		switch {
		case inRange(*rec.paidAt, params.CurrentStart, params.CurrentEnd):
			current = current.Add(rec.total)
		case inRange(*rec.paidAt, params.PreviousStart, params.PreviousEnd):
			previous = previous.Add(rec.total)
		}
	}
	return PeriodRevenue{
		Current:       current,
		Previous:      previous,
		GrowthPercent: growthPercent(previous, current),
	}
}

func growthPercent(base, current decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	return current.Sub(base).Div(base).Mul(hundred).InexactFloat64()
}

// revenueByDimension sums paid revenue per dimension value and returns the
// top-N slices sorted by amount descending. Percentages are relative to the
// combined two-period revenue, computed in full precision and rounded to
// one decimal for display.
func revenueByDimension(records []record, key func(record) string, combined decimal.Decimal, topN int) []DimensionSlice {
	sums := make(map[string]decimal.Decimal)
	for _, rec := range records {
		if rec.status != invoice.StatusPaid {
			continue
		}
		name := key(rec)
		sums[name] = sums[name].Add(rec.total)
	}

	slices := make([]DimensionSlice, 0, len(sums))
	for name, amount := range sums {
		slices = append(slices, DimensionSlice{Name: name, Amount: amount})
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Amount.Equal(slices[j].Amount) {
			return slices[i].Amount.GreaterThan(slices[j].Amount)
		}
		return slices[i].Name < slices[j].Name
	})
	if len(slices) > topN {
		slices = slices[:topN]
	}
	for idx := range slices {
		slices[idx].Percent = sharePercent(slices[idx].Amount, combined)
	}
	return slices
}

func sharePercent(amount, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return amount.Div(total).Mul(hundred).Round(1).InexactFloat64()
}

// agingReceivables assigns every outstanding invoice to exactly one
// days-past-due bucket. Records without a due date cannot be bucketed; they
// still count toward TotalOutstanding and the skipped counter.
func agingReceivables(records []record, asOf time.Time, quality *DataQuality) AgingSummary {
	var summary AgingSummary
	for _, rec := range records {
		if rec.status == invoice.StatusPaid || rec.status == invoice.StatusCancelled {
			continue
		}
		summary.TotalOutstanding = summary.TotalOutstanding.Add(rec.total)
		if rec.dueDate.IsZero() {
			summary.Unbucketed = summary.Unbucketed.Add(rec.total)
			quality.SkippedAging++
			continue
		}
		days := int(asOf.Sub(rec.dueDate).Hours() / 24)
		switch {
		case days <= 0:
			summary.Current = summary.Current.Add(rec.total)
		case days <= 30:
			summary.Days30 = summary.Days30.Add(rec.total)
		case days <= 60:
			summary.Days60 = summary.Days60.Add(rec.total)
		case days <= 90:
			summary.Days90 = summary.Days90.Add(rec.total)
		default:
			summary.Over90 = summary.Over90.Add(rec.total)
		}
	}
	return summary
}

// monthlyCashflow produces the trailing month series, oldest to newest.
// Paid invoices without a paid date cannot be placed in a month and are
// reported through the skipped counter.
func monthlyCashflow(records []record, params Params, quality *DataQuality) []CashflowPoint {
	months := trailingMonths(params.AsOf, params.TrailingMonths)
	inflows := make(map[string]decimal.Decimal, len(months))
	for _, rec := range records {
		if rec.status != invoice.StatusPaid {
			continue
		}
		if rec.paidAt == nil {
			quality.SkippedCashflow++
			continue
		}
		key := monthKey(*rec.paidAt)
		inflows[key] = inflows[key].Add(rec.total)
	}

	points := make([]CashflowPoint, 0, len(months))
	for _, month := range months {
		key := monthKey(month)
		inflow := inflows[key]
		points = append(points, CashflowPoint{
			Month:   key,
			Inflow:  inflow,
			Outflow: decimal.Zero,
			Net:     inflow,
		})
	}
	return points
}

// taxSummary walks the same trailing months, omitting zero-revenue months
// from the detail table. Overall totals cover every paid invoice regardless
// of month.
func taxSummary(records []record, params Params) TaxSummary {
	summary := TaxSummary{}
	revenue := make(map[string]decimal.Decimal)
	tax := make(map[string]decimal.Decimal)
	for _, rec := range records {
		if rec.status != invoice.StatusPaid {
			continue
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(rec.total)
		summary.TotalTax = summary.TotalTax.Add(rec.tax)
		if rec.paidAt == nil {
			continue
		}
		key := monthKey(*rec.paidAt)
		revenue[key] = revenue[key].Add(rec.total)
		tax[key] = tax[key].Add(rec.tax)
	}

	for _, month := range trailingMonths(params.AsOf, params.TrailingMonths) {
		key := monthKey(month)
		if revenue[key].IsZero() {
			continue
		}
		summary.Months = append(summary.Months, TaxMonth{
			Month:   key,
			Revenue: revenue[key],
			Tax:     tax[key],
		})
	}
	return summary
}

func trailingMonths(asOf time.Time, count int) []time.Time {
	months := make([]time.Time, 0, count)
	start := monthStart(asOf).AddDate(0, -(count - 1), 0)
	for i := 0; i < count; i++ {
		months = append(months, start.AddDate(0, i, 0))
	}
	return months
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

var hundred = decimal.NewFromInt(100)
