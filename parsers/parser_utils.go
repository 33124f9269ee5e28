package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var datePrefixRe = regexp.MustCompile(`^(\d{4})[/.-](\d{1,2})[/.-](\d{1,2})`)

// getColIndex maps header names to column positions and checks that the
// required ones are present.
func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.TrimSpace(colName)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("required header not found: %s", req)
		}
	}
	return colIndex, nil
}

// findDateColumn locates the date column by substring match after
// stripping spaces, dashes and underscores; the vendors disagree on the
// exact header text but all contain the marker.
func findDateColumn(header []string, marker string) (int, bool) {
	for i, colName := range header {
		normalized := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(colName)
		if strings.Contains(normalized, marker) {
			return i, true
		}
	}
	return 0, false
}

// parseCellDate extracts a leading YYYY/MM/DD (or -, .) date from a
// cell. Vendor exports append slip numbers after the date in some
// formats.
func parseCellDate(s string) (time.Time, bool) {
	m := datePrefixRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// parseCellAmount reads a monetary cell, tolerating thousands
// separators.
func parseCellAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// normalizeCode turns "1234.0" style numeric codes into "1234"; codes
// come out of the workbooks as floats.
func normalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

func cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
