package parsers

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"srg/model"
)

// Receivables enquiry export headers. Total is always present; the
// overdue breakdowns depend on the portal skin and default to zero
// when their column is missing.
const (
	colRecvTotal   = "총채권"
	colRecvOverdue = "기간초과 매출채권"
	colRecvOver90  = "90일초과 매출채권"
)

// ParseReceivablesFile standardizes one accounts-receivable workbook.
func ParseReceivablesFile(path, company string, asOf time.Time) ([]model.ReceivableRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseReceivablesWorkbook(f, filepath.Base(path), company, asOf)
}

// ParseReceivablesReader standardizes a receivables workbook from a
// stream.
func ParseReceivablesReader(r io.Reader, filename, company string, asOf time.Time) ([]model.ReceivableRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseReceivablesWorkbook(f, filename, company, asOf)
}

func parseReceivablesWorkbook(f *excelize.File, filename, company string, asOf time.Time) ([]model.ReceivableRecord, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	// Same export shape as the sales enquiry: title row, then header.
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no header row")
	}
	header := rows[1]

	colIndex, err := getColIndex(header, []string{colClientCode, colClientName, colRecvTotal})
	if err != nil {
		return nil, err
	}

	var records []model.ReceivableRecord
	dropped := 0
	for _, row := range rows[2:] {
		if len(row) == 0 {
			continue
		}
		code := normalizeCode(cell(row, colIndex[colClientCode]))
		if code == "" { // portal appends a grand-total line with no code
			continue
		}
		total, ok := parseCellAmount(cell(row, colIndex[colRecvTotal]))
		if !ok {
			dropped++
			continue
		}

		rec := model.ReceivableRecord{
			Company:    company,
			AsOf:       asOf,
			ClientCode: code,
			ClientName: cell(row, colIndex[colClientName]),
			Total:      total,
		}
		if idx, ok := colIndex[colRecvOverdue]; ok {
			rec.Overdue, _ = parseCellAmount(cell(row, idx))
		}
		if idx, ok := colIndex[colRecvOver90]; ok {
			rec.Over90, _ = parseCellAmount(cell(row, idx))
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		log.Printf("WARN: %s: dropped %d receivables row(s) with unparsable totals", filename, dropped)
	}
	return records, nil
}
