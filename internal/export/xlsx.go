package export

import (
	"fmt"
	"io"

	"mystore-pos/internal/report"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Ventas"

// WriteSalesXLSX writes the report rows to a single "Ventas" sheet.
func WriteSalesXLSX(w io.Writer, rows []report.Row) error {
	if len(rows) == 0 {
		return report.ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(report.Headers))
	for i, h := range report.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		total, _ := r.Total.Round(2).Float64()
		row := []interface{}{r.ID, r.Date, r.Client, r.TaxID, r.Seller, total}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetName, "B", "E", 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
