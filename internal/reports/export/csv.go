// Package export serialises report snapshots for the console's spreadsheet
// downloads. Amounts are emitted verbatim; currency formatting stays a
// presentation concern.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spaceworks-id/spaceworks/internal/reports"
)

// WriteRevenueCSV serialises the period revenue comparison.
func WriteRevenueCSV(w io.Writer, snapshot reports.Snapshot) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{"Metric", "Value"},
		{"As Of", snapshot.AsOf.Format("2006-01-02")},
		{"Revenue This Period", snapshot.Revenue.Current.String()},
		{"Revenue Last Period", snapshot.Revenue.Previous.String()},
		{"Growth Percent", formatFloat(snapshot.Revenue.GrowthPercent)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDimensionCSV emits a top-N breakdown (services or cities).
func WriteDimensionCSV(w io.Writer, dimension string, slices []reports.DimensionSlice) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{dimension, "Revenue", "Percent"}); err != nil {
		return err
	}
	for _, slice := range slices {
		if err := writer.Write([]string{slice.Name, slice.Amount.String(), formatFloat(slice.Percent)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAgingCSV emits the receivables aging buckets.
func WriteAgingCSV(w io.Writer, aging reports.AgingSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	records := [][]string{
		{"Bucket", "Amount"},
		{"Current", aging.Current.String()},
		{"1-30 Days", aging.Days30.String()},
		{"31-60 Days", aging.Days60.String()},
		{"61-90 Days", aging.Days90.String()},
		{"Over 90 Days", aging.Over90.String()},
		{"No Due Date", aging.Unbucketed.String()},
		{"Total Outstanding", aging.TotalOutstanding.String()},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCashflowCSV emits the trailing monthly cash-flow series.
func WriteCashflowCSV(w io.Writer, points []reports.CashflowPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Month", "Inflow", "Outflow", "Net"}); err != nil {
		return err
	}
	for _, point := range points {
		record := []string{point.Month, point.Inflow.String(), point.Outflow.String(), point.Net.String()}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTaxCSV emits the tax summary detail plus overall totals.
func WriteTaxCSV(w io.Writer, tax reports.TaxSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Month", "Revenue", "Tax"}); err != nil {
		return err
	}
	for _, month := range tax.Months {
		if err := writer.Write([]string{month.Month, month.Revenue.String(), month.Tax.String()}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Total", tax.TotalRevenue.String(), tax.TotalTax.String()}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
