package report

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"srg/aggregation"
	"srg/config"
	"srg/database"
	"srg/model"
	"srg/period"
)

// Run executes the report stage from the stored transaction snapshot:
// it rebuilds the monthly and weekly pivots, fills the front-page
// header cells from the newest transaction date, and splices everything
// into a fresh copy of the template.
func Run(conn *sqlx.DB, cfg *config.Config) (string, error) {
	records, err := database.GetAllTransactions(conn)
	if err != nil {
		return "", fmt.Errorf("load transaction snapshot: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no processed data; run the processing stage first")
	}

	monthly := buildPivot(records, cfg, model.GroupByMonth)
	weekly := buildPivot(records, cfg, model.GroupByBusinessWeek)

	latest := records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	headers := Headers{
		BaseMonth: fmt.Sprintf("%d월", int(latest.Month())),
		WeekRange: period.BusinessWeekOf(latest).Label(),
	}

	path, err := Generate(cfg.Paths.Template, cfg.Paths.ReportOutput, DefaultLayout(), monthly, weekly, headers)
	if err != nil {
		return "", err
	}

	// The receivables block rides along when collected data exists; its
	// absence never blocks the sales report.
	recv, asOf, err := LoadReceivables(cfg)
	switch {
	case err != nil:
		log.Printf("WARN: receivables skipped: %v", err)
	case len(recv) == 0:
		log.Printf("no collected receivables; report has no %s sheet", ReceivablesSheet)
	default:
		if err := AppendReceivablesSheet(path, recv, asOf); err != nil {
			log.Printf("WARN: receivables integration failed: %v", err)
		} else {
			log.Printf("receivables integrated: %d row(s) as of %s", len(recv), asOf.Format("2006-01-02"))
		}
	}

	log.Printf("report written: %s (%d records, base month %s)", path, len(records), headers.BaseMonth)
	return path, nil
}

func buildPivot(records []model.TransactionRecord, cfg *config.Config, groupBy model.GroupBy) model.PivotTable {
	rows := aggregation.Summarize(records, groupBy)
	return aggregation.Pivot(rows, aggregation.KeyHeaders(groupBy), cfg.CategoryOrder)
}
