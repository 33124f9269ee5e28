package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"srg/aggregation"
	"srg/model"
)

// Layout names the template sheets and anchor cells the pivot tables
// are spliced into. Layout belongs to the template, not the splicer;
// callers override fields to match their template file.
type Layout struct {
	SalesRawSheet string
	MonthlyAnchor string
	WeeklyAnchor  string

	FrontSheet     string
	BaseMonthCell  string
	WeekRangeCell  string

	MergePolicy MergePolicy
}

// DefaultLayout matches the shipped weekly report template.
func DefaultLayout() Layout {
	return Layout{
		SalesRawSheet: "sales raw",
		MonthlyAnchor: "A3",
		WeeklyAnchor:  "H3",
		FrontSheet:    "page1",
		BaseMonthCell: "B1",
		WeekRangeCell: "D1",
		MergePolicy:   PolicySkip,
	}
}

// Headers describes the optional front-page cells.
type Headers struct {
	BaseMonth string
	WeekRange string
}

// Generate copies the template and splices the monthly and weekly pivot
// tables into it. A missing template or unwritable output path is fatal
// for the report stage; individual cell failures are not.
func Generate(templatePath, outputDir string, layout Layout, monthly, weekly model.PivotTable, headers Headers) (string, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return "", fmt.Errorf("template file: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	resultPath := filepath.Join(outputDir,
		fmt.Sprintf("weekly_report_%s.xlsx", time.Now().Format("20060102_1504")))
	if err := copyFile(templatePath, resultPath); err != nil {
		return "", fmt.Errorf("copy template: %w", err)
	}

	f, err := excelize.OpenFile(resultPath)
	if err != nil {
		return "", fmt.Errorf("open report copy: %w", err)
	}
	defer f.Close()

	splicer := NewSplicer(f)

	rep, err := splicer.WriteTable(layout.SalesRawSheet, layout.MonthlyAnchor, TableValues(monthly), layout.MergePolicy)
	if err != nil {
		return "", fmt.Errorf("write monthly table: %w", err)
	}
	log.Printf("monthly table spliced: %d written, %d skipped", rep.Written, rep.Skipped)

	rep, err = splicer.WriteTable(layout.SalesRawSheet, layout.WeeklyAnchor, TableValues(weekly), layout.MergePolicy)
	if err != nil {
		return "", fmt.Errorf("write weekly table: %w", err)
	}
	log.Printf("weekly table spliced: %d written, %d skipped", rep.Written, rep.Skipped)

	if layout.FrontSheet != "" && (headers.BaseMonth != "" || headers.WeekRange != "") {
		writeHeaders(f, layout, headers)
	}

	if err := f.Save(); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return resultPath, nil
}

// TableValues flattens a pivot table into splice-ready rows. The
// synthetic total row stays out of the report; the template computes
// its own totals.
func TableValues(table model.PivotTable) [][]interface{} {
	var values [][]interface{}
	for _, row := range table.Rows {
		if len(row.Keys) > 0 && row.Keys[0] == aggregation.TotalLabel {
			continue
		}
		cells := make([]interface{}, 0, table.ColumnCount())
		for _, k := range row.Keys {
			cells = append(cells, k)
		}
		for _, amt := range row.Amounts {
			cells = append(cells, amt.InexactFloat64())
		}
		values = append(values, cells)
	}
	return values
}

func writeHeaders(f *excelize.File, layout Layout, headers Headers) {
	// Header cells usually sit in merged title rows; best effort only.
	if headers.BaseMonth != "" {
		if err := f.SetCellValue(layout.FrontSheet, layout.BaseMonthCell, headers.BaseMonth); err != nil {
			log.Printf("WARN: base month cell: %v", err)
		}
	}
	if headers.WeekRange != "" {
		if err := f.SetCellValue(layout.FrontSheet, layout.WeekRangeCell, headers.WeekRange); err != nil {
			log.Printf("WARN: week range cell: %v", err)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
