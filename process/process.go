package process

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"srg/aggregation"
	"srg/backup"
	"srg/config"
	"srg/database"
	"srg/model"
	"srg/parsers"
	"srg/period"
)

// SummaryFileName is the aggregate workbook written to the processed
// data directory.
const SummaryFileName = "sales_summary.xlsx"

// Result is what the processing stage produced, for the caller's
// summary line and for the report stage.
type Result struct {
	Files         int
	FailedFiles   []string
	Records       int
	Monthly       model.PivotTable
	Weekly        model.PivotTable
	ClientMonthly model.PivotTable
	OutputPath    string
}

// Run executes the processing stage: parse every recognized vendor
// workbook under the raw data dir, rebuild the transaction snapshot,
// aggregate, and write the three-sheet summary workbook. Individual
// bad files are skipped; the stage fails only when no file survives.
func Run(conn *sqlx.DB, cfg *config.Config) (*Result, error) {
	files, err := findWorkbooks(cfg.Paths.SalesRawData)
	if err != nil {
		return nil, fmt.Errorf("scan raw data dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no vendor workbooks under %s", cfg.Paths.SalesRawData)
	}
	log.Printf("processing %d raw workbook(s)", len(files))

	staff := loadStaff(cfg)

	res := &Result{}
	var all []model.TransactionRecord
	recognized := 0
	for _, path := range files {
		co, ok := cfg.CompanyForFile(path)
		if !ok {
			log.Printf("WARN: %s matches no configured company, skipped", filepath.Base(path))
			continue
		}
		recognized++

		opts := parsers.SalesParseOptions{
			Company:         co.Name,
			DefaultCategory: co.DefaultCategory,
		}
		if co.UseStaffLookup {
			opts.StaffCategories = staff
		}

		records, stats, err := parsers.ParseSalesFile(path, opts)
		if err != nil {
			log.Printf("ERROR: parse %s: %v", filepath.Base(path), err)
			res.FailedFiles = append(res.FailedFiles, filepath.Base(path))
			continue
		}
		if stats.UnknownStaff > 0 {
			log.Printf("WARN: %s: %d row(s) with unknown staff code", filepath.Base(path), stats.UnknownStaff)
		}
		all = append(all, records...)
		res.Files++
	}

	if recognized == 0 {
		return nil, fmt.Errorf("no workbook matched a configured company")
	}
	if res.Files == 0 {
		return nil, fmt.Errorf("all %d recognized workbook(s) failed to parse", recognized)
	}

	all = parsers.ApplyCategoryMappings(all, cfg.CategoryMappings)
	var fstats parsers.FilterStats
	all, fstats = parsers.FilterExcluded(all, cfg.ExcludeProducts, cfg.ExcludeClientCodes, tradeCategory(cfg))
	if fstats.ExcludedProducts > 0 || fstats.ExcludedClients > 0 {
		log.Printf("filters removed %d product row(s), %d trade client row(s)", fstats.ExcludedProducts, fstats.ExcludedClients)
	}
	res.Records = len(all)

	if err := database.ReplaceTransactions(conn, all); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	logMonthlyBreakdown(all)

	res.Monthly = pivotOf(all, cfg, model.GroupByMonth)
	res.Weekly = pivotOf(all, cfg, model.GroupByBusinessWeek)
	res.ClientMonthly = pivotOf(all, cfg, model.GroupByClientMonth)
	for _, t := range []struct {
		name  string
		table model.PivotTable
	}{
		{"monthly", res.Monthly}, {"weekly", res.Weekly}, {"client-monthly", res.ClientMonthly},
	} {
		if t.table.DroppedCategories > 0 {
			log.Printf("WARN: %s pivot dropped %d row(s) with categories outside the configured order", t.name, t.table.DroppedCategories)
		}
	}

	outputPath := filepath.Join(cfg.Paths.Processed, SummaryFileName)
	if bak, err := backup.NewManager(cfg.BackupRetentionDays).Create(outputPath, cfg.Paths.Backup); err != nil {
		log.Printf("WARN: backup of previous summary failed: %v", err)
	} else if bak != "" {
		log.Printf("previous summary backed up: %s", bak)
	}

	if err := WriteSummaryWorkbook(outputPath, res); err != nil {
		return nil, fmt.Errorf("write summary workbook: %w", err)
	}
	res.OutputPath = outputPath
	log.Printf("summary written: %s (%d records from %d file(s))", outputPath, res.Records, res.Files)

	// CP949 copy of the monthly table for legacy spreadsheet installs.
	csvPath := filepath.Join(cfg.Paths.Processed, "sales_summary_monthly.csv")
	if err := ExportPivotCSVFile(csvPath, res.Monthly); err != nil {
		log.Printf("WARN: CSV export: %v", err)
	}

	return res, nil
}

func pivotOf(records []model.TransactionRecord, cfg *config.Config, groupBy model.GroupBy) model.PivotTable {
	rows := aggregation.Summarize(records, groupBy)
	return aggregation.Pivot(rows, aggregation.KeyHeaders(groupBy), cfg.CategoryOrder)
}

// tradeCategory picks the configured category the client-code
// exclusion applies to; by convention the third canonical category.
func tradeCategory(cfg *config.Config) string {
	for _, cat := range cfg.CategoryOrder {
		if cat == "trade" {
			return cat
		}
	}
	if len(cfg.CategoryOrder) > 2 {
		return cfg.CategoryOrder[2]
	}
	return ""
}

func loadStaff(cfg *config.Config) map[string]string {
	needed := false
	for _, co := range cfg.Companies {
		if co.UseStaffLookup {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}
	staff, err := parsers.LoadStaffCategories(cfg.Paths.StaffFile, cfg.Paths.StaffSheet)
	if err != nil {
		log.Printf("WARN: staff workbook unavailable (%v); staff-based categories will be empty", err)
		return map[string]string{}
	}
	log.Printf("staff lookup loaded: %d entries", len(staff))
	return staff
}

func findWorkbooks(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") { // Excel lock files
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// logMonthlyBreakdown logs per-month row counts and totals and flags
// empty months inside the covered span; a silent month usually means a
// download failed.
func logMonthlyBreakdown(records []model.TransactionRecord) {
	if len(records) == 0 {
		return
	}
	type stat struct {
		count int
		sum   decimal.Decimal
	}
	months := make(map[period.YearMonth]*stat)
	min, max := period.YearMonthOf(records[0].Date), period.YearMonthOf(records[0].Date)
	for _, rec := range records {
		ym := period.YearMonthOf(rec.Date)
		s, ok := months[ym]
		if !ok {
			s = &stat{}
			months[ym] = s
		}
		s.count++
		s.sum = s.sum.Add(rec.Amount)
		if ym.String() < min.String() {
			min = ym
		}
		if ym.String() > max.String() {
			max = ym
		}
	}

	for ym := min; ym.String() <= max.String(); ym = next(ym) {
		if s, ok := months[ym]; ok {
			log.Printf("  %s: %d row(s), total %s", ym, s.count, s.sum)
		} else {
			log.Printf("WARN:  %s: no data", ym)
		}
	}
}

func next(ym period.YearMonth) period.YearMonth {
	if ym.Month == 12 {
		return period.YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return period.YearMonth{Year: ym.Year, Month: ym.Month + 1}
}
