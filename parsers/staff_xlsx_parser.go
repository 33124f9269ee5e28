package parsers

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Staff workbook headers: staff code and the category that staff
// member's sales belong to.
const (
	colStaffNumber   = "사원번호"
	colStaffCategory = "구분"
)

// LoadStaffCategories reads the staff workbook into a staff code →
// category lookup. Used by companies whose exports carry no category of
// their own.
func LoadStaffCategories(path, sheet string) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open staff workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read staff sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("staff sheet %q is empty", sheet)
	}

	colIndex, err := getColIndex(rows[0], []string{colStaffNumber, colStaffCategory})
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]string)
	for _, row := range rows[1:] {
		code := normalizeCode(cell(row, colIndex[colStaffNumber]))
		category := cell(row, colIndex[colStaffCategory])
		if code == "" || category == "" {
			continue
		}
		lookup[code] = category
	}
	return lookup, nil
}
