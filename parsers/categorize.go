package parsers

import "srg/model"

// FilterStats reports how many rows the category rules removed.
type FilterStats struct {
	ExcludedProducts int
	ExcludedClients  int
}

// ApplyCategoryMappings folds raw categories into canonical ones
// (e.g. export → trade). Records are copied, never mutated in place.
func ApplyCategoryMappings(records []model.TransactionRecord, mappings map[string]string) []model.TransactionRecord {
	if len(mappings) == 0 {
		return records
	}
	out := make([]model.TransactionRecord, len(records))
	for i, rec := range records {
		if mapped, ok := mappings[rec.Category]; ok {
			rec.Category = mapped
		}
		out[i] = rec
	}
	return out
}

// FilterExcluded removes excluded products, and trade rows belonging to
// excluded client codes. The client-code exclusion only applies to the
// trade category; other categories keep those clients.
func FilterExcluded(records []model.TransactionRecord, excludeProducts, excludeClientCodes []string, tradeCategory string) ([]model.TransactionRecord, FilterStats) {
	var stats FilterStats
	products := toSet(excludeProducts)
	clients := toSet(excludeClientCodes)

	out := make([]model.TransactionRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := products[rec.Product]; ok {
			stats.ExcludedProducts++
			continue
		}
		if rec.Category == tradeCategory {
			if _, ok := clients[rec.ClientCode]; ok {
				stats.ExcludedClients++
				continue
			}
		}
		out = append(out, rec)
	}
	return out, stats
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
