package report

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
)

// MergePolicy decides what happens when a write lands inside a merged
// cell range.
type MergePolicy int

const (
	// PolicySkip leaves the merged range untouched and counts the cell
	// as skipped.
	PolicySkip MergePolicy = iota
	// PolicyRedirect writes the value into the merged range's top-left
	// anchor cell instead.
	PolicyRedirect
)

// WriteReport summarizes one table splice.
type WriteReport struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

type mergedRange struct {
	minCol, minRow, maxCol, maxRow int
	anchor                         string
}

// Splicer writes value tables into fixed positions of an existing
// workbook. It owns no layout: sheet names, anchors and the merge
// policy all come from the caller.
type Splicer struct {
	f *excelize.File
}

func NewSplicer(f *excelize.File) *Splicer {
	return &Splicer{f: f}
}

// WriteTable writes values row-major starting at topLeft. A cell inside
// a merged range follows the policy; any other single-cell failure is
// logged and counted skipped so the rest of the table still lands.
func (s *Splicer) WriteTable(sheet, topLeft string, values [][]interface{}, policy MergePolicy) (WriteReport, error) {
	var rep WriteReport

	baseCol, baseRow, err := excelize.CellNameToCoordinates(topLeft)
	if err != nil {
		return rep, fmt.Errorf("bad anchor cell %q: %w", topLeft, err)
	}
	merged, err := s.mergedRanges(sheet)
	if err != nil {
		return rep, err
	}

	for r, row := range values {
		for c, value := range row {
			col, rowNum := baseCol+c, baseRow+r
			target, err := excelize.CoordinatesToCellName(col, rowNum)
			if err != nil {
				log.Printf("WARN: %s: cell (%d,%d) out of range, skipped: %v", sheet, col, rowNum, err)
				rep.Skipped++
				continue
			}

			if mr, inside := findMerged(merged, col, rowNum); inside && target != mr.anchor {
				if policy == PolicySkip {
					rep.Skipped++
					continue
				}
				target = mr.anchor
			}

			if err := s.f.SetCellValue(sheet, target, value); err != nil {
				log.Printf("WARN: %s!%s write failed, skipped: %v", sheet, target, err)
				rep.Skipped++
				continue
			}
			rep.Written++
		}
	}
	return rep, nil
}

func (s *Splicer) mergedRanges(sheet string) ([]mergedRange, error) {
	cells, err := s.f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged cells of %q: %w", sheet, err)
	}
	var ranges []mergedRange
	for _, mc := range cells {
		minCol, minRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		maxCol, maxRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		ranges = append(ranges, mergedRange{
			minCol: minCol, minRow: minRow,
			maxCol: maxCol, maxRow: maxRow,
			anchor: mc.GetStartAxis(),
		})
	}
	return ranges, nil
}

func findMerged(ranges []mergedRange, col, row int) (mergedRange, bool) {
	for _, mr := range ranges {
		if col >= mr.minCol && col <= mr.maxCol && row >= mr.minRow && row <= mr.maxRow {
			return mr, true
		}
	}
	return mergedRange{}, false
}
