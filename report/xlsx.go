package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/tally/product"
)

// ContentType is the MIME type of WriteXLSX output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names used by WriteXLSX.
const (
	SheetSummary    = "Summary"
	SheetTopSellers = "Top sellers"
	SheetLowStock   = "Low stock"
	SheetCategories = "Categories"
)

// WriteXLSX renders s as a workbook with one sheet for the headline figures
// and one per list. Amounts are written in major units.
func WriteXLSX(w io.Writer, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // closing an unsaved workbook only drops temp files

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	figures := [][]any{
		{"Figure", "Value"},
		{"Generated at", s.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Sales", s.SalesCount},
		{"Sales revenue", s.SalesRevenue.Decimal().InexactFloat64()},
		{"Profit", s.Profit.Decimal().InexactFloat64()},
		{"Inventory value", s.InventoryValue.Decimal().InexactFloat64()},
		{"Service revenue", s.ServiceRevenue.Decimal().InexactFloat64()},
		{"Pending tickets", s.PendingTickets},
		{"Course revenue", s.CourseRevenue.Decimal().InexactFloat64()},
		{"Outstanding balance", s.OutstandingBalance.Decimal().InexactFloat64()},
	}
	if err := writeRows(f, SheetSummary, bold, figures); err != nil {
		return err
	}

	sellers := [][]any{{"Product", "Units", "Revenue"}}
	for _, sl := range s.TopSellers {
		sellers = append(sellers, []any{sl.Name, sl.Quantity, sl.Revenue.Decimal().InexactFloat64()})
	}
	if err := addSheet(f, SheetTopSellers, bold, sellers); err != nil {
		return err
	}

	low := [][]any{{"Product", "Stock", "Minimum"}}
	for _, l := range s.LowStock {
		low = append(low, []any{l.Name, l.Stock, l.MinStock})
	}
	if err := addSheet(f, SheetLowStock, bold, low); err != nil {
		return err
	}

	cats := make([]product.Category, 0, len(s.UnitsByCategory))
	for c := range s.UnitsByCategory {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	units := [][]any{{"Category", "Units"}}
	for _, c := range cats {
		units = append(units, []any{string(c), s.UnitsByCategory[c]})
	}
	if err := addSheet(f, SheetCategories, bold, units); err != nil {
		return err
	}

	return f.Write(w)
}

func addSheet(f *excelize.File, name string, header int, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, header, rows)
}

// writeRows writes rows from A1 down and bolds the first one.
func writeRows(f *excelize.File, sheet string, header int, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}
