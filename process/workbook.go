package process

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"srg/model"
)

// Sheet names in the summary workbook.
const (
	SheetMonthly       = "monthly"
	SheetWeekly        = "weekly"
	SheetClientMonthly = "client_monthly"
)

// WriteSummaryWorkbook writes the three pivot tables into one
// workbook, one sheet per grouping axis.
func WriteSummaryWorkbook(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("WARN: close workbook: %v", err)
		}
	}()

	sheets := []struct {
		name  string
		table model.PivotTable
	}{
		{SheetMonthly, res.Monthly},
		{SheetWeekly, res.Weekly},
		{SheetClientMonthly, res.ClientMonthly},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(s.name); err != nil {
				return err
			}
		}
		if err := writeTable(f, s.name, s.table); err != nil {
			return fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, table model.PivotTable) error {
	header := make([]interface{}, 0, table.ColumnCount())
	for _, h := range table.KeyHeaders {
		header = append(header, h)
	}
	for _, c := range table.Categories {
		header = append(header, c)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, 0, table.ColumnCount())
		for _, k := range row.Keys {
			cells = append(cells, k)
		}
		for _, a := range row.Amounts {
			cells = append(cells, a.InexactFloat64())
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
