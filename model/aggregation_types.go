package model

import "github.com/shopspring/decimal"

// GroupBy selects the grouping axis for Summarize.
type GroupBy string

const (
	GroupByMonth        GroupBy = "month"
	GroupByBusinessWeek GroupBy = "business_week"
	GroupByClientMonth  GroupBy = "client_and_month"
)

// AggregateRow is one (grouping keys, category) sum before pivoting.
type AggregateRow struct {
	Keys     []string        `json:"keys"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// PivotTable is the categorized wide form written to spreadsheets.
// Categories holds the column order; the last entry of Rows is the
// synthetic "total" row.
type PivotTable struct {
	KeyHeaders []string   `json:"keyHeaders"`
	Categories []string   `json:"categories"`
	Rows       []PivotRow `json:"rows"`

	// DroppedCategories counts input rows whose category was not in the
	// configured order and therefore does not appear in any column.
	DroppedCategories int `json:"droppedCategories"`
}

// PivotRow pairs the grouping key cells with per-category sums in the
// same order as PivotTable.Categories.
type PivotRow struct {
	Keys    []string          `json:"keys"`
	Amounts []decimal.Decimal `json:"amounts"`
}

// ColumnCount is the full width of the row as written to a sheet.
func (t *PivotTable) ColumnCount() int {
	return len(t.KeyHeaders) + len(t.Categories)
}
