package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srg/model"
)

var defaultOrder = []string{"drive-unit", "general-parts", "trade", "tk"}

func rec(company string, date time.Time, client, category string, amount int64) model.TransactionRecord {
	return model.TransactionRecord{
		Company:    company,
		Date:       date,
		ClientName: client,
		Category:   category,
		Amount:     decimal.NewFromInt(amount),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarizeBusinessWeekScenario(t *testing.T) {
	// Two categories on Friday 2025-08-08 land in one week row.
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.August, 8), "acme", "drive-unit", 100),
		rec("DND", date(2025, time.August, 8), "acme", "trade", 50),
	}

	rows := Summarize(records, model.GroupByBusinessWeek)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, []string{"2025-08-08 - 2025-08-14"}, row.Keys)
	}

	table := Pivot(rows, KeyHeaders(model.GroupByBusinessWeek), defaultOrder)
	require.Len(t, table.Rows, 2) // one data row + total
	assert.Equal(t, []string{"2025-08-08 - 2025-08-14"}, table.Rows[0].Keys)
	assert.True(t, table.Rows[0].Amounts[0].Equal(decimal.NewFromInt(100)), "drive-unit")
	assert.True(t, table.Rows[0].Amounts[2].Equal(decimal.NewFromInt(50)), "trade")
}

func TestSummarizeMondayBucketsToPriorFriday(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.August, 11), "acme", "tk", 10),
	}
	rows := Summarize(records, model.GroupByBusinessWeek)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"2025-08-08 - 2025-08-14"}, rows[0].Keys)
}

func TestSummarizeMonth(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.July, 3), "a", "trade", 5),
		rec("DND", date(2025, time.July, 20), "b", "trade", 7),
		rec("DNI", date(2025, time.August, 1), "a", "drive-unit", 9),
	}
	rows := Summarize(records, model.GroupByMonth)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025", "7"}, rows[0].Keys)
	assert.Equal(t, "trade", rows[0].Category)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, []string{"2025", "8"}, rows[1].Keys)
}

func TestSummarizeMonthChronologicalAcrossYears(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.October, 1), "a", "tk", 1),
		rec("DND", date(2025, time.September, 1), "a", "tk", 1),
		rec("DND", date(2024, time.December, 1), "a", "tk", 1),
	}
	rows := Summarize(records, model.GroupByMonth)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2024", "12"}, rows[0].Keys)
	assert.Equal(t, []string{"2025", "9"}, rows[1].Keys)
	assert.Equal(t, []string{"2025", "10"}, rows[2].Keys)
}

func TestSummarizeClientMonth(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.July, 3), "beta", "trade", 5),
		rec("DND", date(2025, time.July, 9), "alpha", "trade", 3),
		rec("DND", date(2025, time.July, 15), "alpha", "trade", 4),
	}
	rows := Summarize(records, model.GroupByClientMonth)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alpha", "2025", "7"}, rows[0].Keys)
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, []string{"beta", "2025", "7"}, rows[1].Keys)
}

func TestSummarizeIdempotent(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.August, 8), "acme", "drive-unit", 100),
		rec("DND", date(2025, time.August, 11), "acme", "trade", 50),
		rec("DNI", date(2025, time.July, 2), "zeta", "tk", 7),
	}
	first := Summarize(records, model.GroupByBusinessWeek)
	second := Summarize(records, model.GroupByBusinessWeek)
	assert.Equal(t, first, second)
}

func TestPivotColumnOrderIgnoresInputOrder(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.August, 8), "acme", "tk", 1),
		rec("DND", date(2025, time.August, 8), "acme", "trade", 2),
		rec("DND", date(2025, time.August, 8), "acme", "drive-unit", 3),
	}
	table := Pivot(Summarize(records, model.GroupByMonth), KeyHeaders(model.GroupByMonth), defaultOrder)
	assert.Equal(t, defaultOrder, table.Categories)
	assert.True(t, table.Rows[0].Amounts[0].Equal(decimal.NewFromInt(3)))
	assert.True(t, table.Rows[0].Amounts[2].Equal(decimal.NewFromInt(2)))
	assert.True(t, table.Rows[0].Amounts[3].Equal(decimal.NewFromInt(1)))
}

func TestPivotDropsUnknownCategoriesButCountsThem(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.August, 8), "acme", "mystery", 999),
		rec("DND", date(2025, time.August, 8), "acme", "trade", 2),
	}
	table := Pivot(Summarize(records, model.GroupByMonth), KeyHeaders(model.GroupByMonth), defaultOrder)
	assert.Equal(t, 1, table.DroppedCategories)
	// The dropped amount must not leak into any column.
	total := table.Rows[len(table.Rows)-1]
	sum := decimal.Zero
	for _, amt := range total.Amounts {
		sum = sum.Add(amt)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(2)))
}

func TestPivotTotalRowSumsColumns(t *testing.T) {
	records := []model.TransactionRecord{
		rec("DND", date(2025, time.July, 4), "a", "trade", 10),
		rec("DND", date(2025, time.August, 8), "a", "trade", 20),
		rec("DND", date(2025, time.August, 8), "a", "tk", 5),
	}
	table := Pivot(Summarize(records, model.GroupByMonth), KeyHeaders(model.GroupByMonth), defaultOrder)
	require.Len(t, table.Rows, 3)

	total := table.Rows[2]
	assert.Equal(t, TotalLabel, total.Keys[0])
	assert.Equal(t, "", total.Keys[1])

	for col := range defaultOrder {
		want := decimal.Zero
		for _, row := range table.Rows[:2] {
			want = want.Add(row.Amounts[col])
		}
		assert.True(t, total.Amounts[col].Equal(want), "column %s", defaultOrder[col])
	}
}

func TestPivotEmptyInputStillHasTotalRow(t *testing.T) {
	table := Pivot(nil, KeyHeaders(model.GroupByBusinessWeek), defaultOrder)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, TotalLabel, table.Rows[0].Keys[0])
	for _, amt := range table.Rows[0].Amounts {
		assert.True(t, amt.IsZero())
	}
}
