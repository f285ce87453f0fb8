// Package export renders the filtered record table as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"typhoondash/internal/core"
	"typhoondash/internal/source"
)

// SheetName is the worksheet holding the exported table.
const SheetName = "태풍피해"

// TotalLabel heads the totals row.
const TotalLabel = "합계"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name for r.
func Filename(r core.YearRange) string {
	return fmt.Sprintf("jeonnam-typhoon-damage-%d-%d.xlsx", r.From, r.To)
}

// Workbook builds a workbook with rows in the given order below a bold
// header row, followed by a totals row.
func Workbook(rows []core.YearRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(source.HeaderColumns))
	for i, h := range source.HeaderColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	var damage, recovery float64
	var casualties int
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.Year, r.Typhoon, r.PropertyDamage, r.RecoveryAmount, r.Casualties}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write year %d: %w", r.Year, err)
		}
		damage += r.PropertyDamage
		recovery += r.RecoveryAmount
		casualties += r.Casualties
	}

	totalRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []interface{}{TotalLabel, "", damage, recovery, casualties}
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		f.Close()
		return nil, fmt.Errorf("write totals: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	f.SetRowStyle(SheetName, 1, 1, bold)
	f.SetRowStyle(SheetName, totalRow, totalRow, bold)

	amount, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(4, totalRow)
		f.SetCellStyle(SheetName, "C2", last, amount)
	}

	f.SetColWidth(SheetName, "A", "A", 10)
	f.SetColWidth(SheetName, "B", "B", 18)
	f.SetColWidth(SheetName, "C", "E", 16)

	return f, nil
}

// WriteXLSX writes the workbook for rows to w.
func WriteXLSX(w io.Writer, rows []core.YearRecord) error {
	f, err := Workbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
