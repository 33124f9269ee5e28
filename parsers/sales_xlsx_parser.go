package parsers

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"srg/model"
)

// Source-locale headers of the vendor sales enquiry export. The date
// column header varies per vendor but always contains the marker.
const (
	dateColumnMarker = "일자"
	colClientName    = "거래처명"
	colClientCode    = "거래처코드"
	colProduct       = "품목명"
	colAmount        = "공급가액합계"
	colStaffCode     = "담당자코드"
)

// SalesParseOptions selects the company-specific parsing path.
type SalesParseOptions struct {
	Company string
	// DefaultCategory is stamped on every record when StaffCategories
	// is nil.
	DefaultCategory string
	// StaffCategories maps staff codes to categories; non-nil switches
	// the category source to the staff lookup.
	StaffCategories map[string]string
}

// SalesParseStats reports what was dropped while standardizing a file.
type SalesParseStats struct {
	RawRows      int
	DroppedRows  int // unparsable date or amount
	UnknownStaff int // staff code absent from the lookup
}

// ParseSalesFile opens and standardizes one vendor workbook.
func ParseSalesFile(path string, opts SalesParseOptions) ([]model.TransactionRecord, SalesParseStats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, SalesParseStats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseSalesWorkbook(f, filepath.Base(path), opts)
}

// ParseSalesReader standardizes a workbook from a stream (uploads).
func ParseSalesReader(r io.Reader, filename string, opts SalesParseOptions) ([]model.TransactionRecord, SalesParseStats, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, SalesParseStats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseSalesWorkbook(f, filename, opts)
}

func parseSalesWorkbook(f *excelize.File, filename string, opts SalesParseOptions) ([]model.TransactionRecord, SalesParseStats, error) {
	var stats SalesParseStats

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, stats, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, stats, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	// The export carries a title row above the header row.
	if len(rows) < 2 {
		return nil, stats, fmt.Errorf("workbook has no header row")
	}
	header := rows[1]

	required := []string{colClientName, colClientCode, colProduct, colAmount}
	if opts.StaffCategories != nil {
		required = append(required, colStaffCode)
	}
	colIndex, err := getColIndex(header, required)
	if err != nil {
		return nil, stats, err
	}
	dateIdx, ok := findDateColumn(header, dateColumnMarker)
	if !ok {
		return nil, stats, fmt.Errorf("date column (*%s*) not found", dateColumnMarker)
	}

	var records []model.TransactionRecord
	for _, row := range rows[2:] {
		if len(row) == 0 {
			continue
		}
		stats.RawRows++

		d, ok := parseCellDate(cell(row, dateIdx))
		if !ok {
			stats.DroppedRows++
			continue
		}
		amount, ok := parseCellAmount(cell(row, colIndex[colAmount]))
		if !ok {
			stats.DroppedRows++
			continue
		}

		rec := model.TransactionRecord{
			Company:    opts.Company,
			Date:       d,
			ClientCode: normalizeCode(cell(row, colIndex[colClientCode])),
			ClientName: cell(row, colIndex[colClientName]),
			Product:    cell(row, colIndex[colProduct]),
			Amount:     amount,
			SourceFile: filename,
		}

		if opts.StaffCategories != nil {
			staffCode := normalizeCode(cell(row, colIndex[colStaffCode]))
			category, ok := opts.StaffCategories[staffCode]
			if !ok {
				stats.UnknownStaff++
			}
			rec.Category = category
		} else {
			rec.Category = opts.DefaultCategory
		}

		records = append(records, rec)
	}

	if stats.DroppedRows > 0 {
		log.Printf("WARN: %s: dropped %d of %d rows (unparsable date or amount)", filename, stats.DroppedRows, stats.RawRows)
	}
	return records, stats, nil
}
