package aggregation

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"srg/model"
	"srg/period"
)

type group struct {
	sortKey string
	keys    []string
	sums    map[string]decimal.Decimal
}

// Summarize groups records on the requested axis and sums the amount
// per category inside each group. Pure over its input; records with the
// same keys and category always collapse into one row.
func Summarize(records []model.TransactionRecord, groupBy model.GroupBy) []model.AggregateRow {
	groups := make(map[string]*group)

	for _, rec := range records {
		sortKey, keys := groupKeys(rec, groupBy)
		g, ok := groups[sortKey]
		if !ok {
			g = &group{sortKey: sortKey, keys: keys, sums: make(map[string]decimal.Decimal)}
			groups[sortKey] = g
		}
		g.sums[rec.Category] = g.sums[rec.Category].Add(rec.Amount)
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].sortKey < ordered[j].sortKey
	})

	var rows []model.AggregateRow
	for _, g := range ordered {
		cats := make([]string, 0, len(g.sums))
		for cat := range g.sums {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			rows = append(rows, model.AggregateRow{
				Keys:     append([]string(nil), g.keys...),
				Category: cat,
				Amount:   g.sums[cat],
			})
		}
	}
	return rows
}

// groupKeys returns a lexicographically sortable key alongside the
// visible key cells. Year/month cells stay unpadded like the source
// workbooks; the sort key is zero-padded so ordering is chronological.
func groupKeys(rec model.TransactionRecord, groupBy model.GroupBy) (string, []string) {
	ym := period.YearMonthOf(rec.Date)
	switch groupBy {
	case model.GroupByBusinessWeek:
		label := period.BusinessWeekOf(rec.Date).Label()
		return label, []string{label}
	case model.GroupByClientMonth:
		return rec.ClientName + "\x00" + ym.String(), []string{
			rec.ClientName,
			strconv.Itoa(ym.Year),
			strconv.Itoa(int(ym.Month)),
		}
	default: // model.GroupByMonth
		return ym.String(), []string{
			strconv.Itoa(ym.Year),
			strconv.Itoa(int(ym.Month)),
		}
	}
}

// KeyHeaders returns the key column headers for a grouping axis, as
// written to the aggregate workbook.
func KeyHeaders(groupBy model.GroupBy) []string {
	switch groupBy {
	case model.GroupByBusinessWeek:
		return []string{"period"}
	case model.GroupByClientMonth:
		return []string{"client", "year", "month"}
	default:
		return []string{"year", "month"}
	}
}
