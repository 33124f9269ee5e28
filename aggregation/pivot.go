package aggregation

import (
	"strings"

	"github.com/shopspring/decimal"

	"srg/model"
)

// TotalLabel is the first key cell of the synthetic sum row appended to
// every pivoted table.
const TotalLabel = "total"

// Pivot reshapes aggregate rows into a wide table whose category
// columns follow categoryOrder exactly. Rows whose category is not in
// the order contribute nothing to the table; they are counted in
// DroppedCategories so the loss is at least visible in logs.
// A trailing "total" row holds the per-category column sums.
func Pivot(rows []model.AggregateRow, keyHeaders []string, categoryOrder []string) model.PivotTable {
	colIndex := make(map[string]int, len(categoryOrder))
	for i, cat := range categoryOrder {
		colIndex[cat] = i
	}

	table := model.PivotTable{
		KeyHeaders: append([]string(nil), keyHeaders...),
		Categories: append([]string(nil), categoryOrder...),
	}

	var (
		current  *model.PivotRow
		lastKeys string
	)
	flush := func() {
		if current != nil {
			table.Rows = append(table.Rows, *current)
			current = nil
		}
	}

	for _, row := range rows {
		keyID := joinKeys(row.Keys)
		if current == nil || keyID != lastKeys {
			flush()
			current = &model.PivotRow{
				Keys:    append([]string(nil), row.Keys...),
				Amounts: zeroAmounts(len(categoryOrder)),
			}
			lastKeys = keyID
		}
		idx, ok := colIndex[row.Category]
		if !ok {
			table.DroppedCategories++
			continue
		}
		current.Amounts[idx] = current.Amounts[idx].Add(row.Amount)
	}
	flush()

	totals := zeroAmounts(len(categoryOrder))
	for _, row := range table.Rows {
		for i, amt := range row.Amounts {
			totals[i] = totals[i].Add(amt)
		}
	}
	totalKeys := make([]string, len(keyHeaders))
	if len(totalKeys) > 0 {
		totalKeys[0] = TotalLabel
	}
	table.Rows = append(table.Rows, model.PivotRow{Keys: totalKeys, Amounts: totals})

	return table
}

func zeroAmounts(n int) []decimal.Decimal {
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = decimal.Zero
	}
	return amounts
}

func joinKeys(keys []string) string {
	return strings.Join(keys, "\x00")
}
