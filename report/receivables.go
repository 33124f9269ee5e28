package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"srg/config"
	"srg/model"
	"srg/parsers"
)

// ReceivablesSheet is the sheet the analysis lands on in the weekly
// report. An existing sheet of that name is replaced.
const ReceivablesSheet = "매출 채권"

const top20Limit = 20

var receivablesFileRe = regexp.MustCompile(`^(.+)_receivables_(\d{8})\.xlsx$`)

// LoadReceivables reads the newest collected receivables workbook per
// company from the receivables dir. Returns the records and the as-of
// date of the newest file; an empty dir yields no records and no error.
func LoadReceivables(cfg *config.Config) ([]model.ReceivableRecord, time.Time, error) {
	entries, err := os.ReadDir(cfg.Paths.Receivables)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("scan receivables dir: %w", err)
	}

	type candidate struct {
		path string
		asOf time.Time
	}
	newest := make(map[string]candidate)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := receivablesFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		asOf, err := time.Parse("20060102", m[2])
		if err != nil {
			continue
		}
		company := m[1]
		if prev, ok := newest[company]; ok && !asOf.After(prev.asOf) {
			continue
		}
		newest[company] = candidate{path: filepath.Join(cfg.Paths.Receivables, entry.Name()), asOf: asOf}
	}

	var (
		records []model.ReceivableRecord
		latest  time.Time
	)
	companies := make([]string, 0, len(newest))
	for company := range newest {
		companies = append(companies, company)
	}
	sort.Strings(companies)
	for _, company := range companies {
		c := newest[company]
		recs, err := parsers.ParseReceivablesFile(c.path, company, c.asOf)
		if err != nil {
			log.Printf("WARN: receivables %s: %v", filepath.Base(c.path), err)
			continue
		}
		records = append(records, recs...)
		if c.asOf.After(latest) {
			latest = c.asOf
		}
	}
	return records, latest, nil
}

// AppendReceivablesSheet writes the receivables analysis into the
// report workbook: per-company balance summary plus the top overdue
// clients across all companies.
func AppendReceivablesSheet(path string, records []model.ReceivableRecord, asOf time.Time) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(ReceivablesSheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(ReceivablesSheet); err != nil {
			return fmt.Errorf("replace %s sheet: %w", ReceivablesSheet, err)
		}
	}
	if _, err := f.NewSheet(ReceivablesSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", ReceivablesSheet, err)
	}

	rows := receivablesSheetRows(records, asOf)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReceivablesSheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", ReceivablesSheet, i+1, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

type companyTotals struct {
	clients int
	total   decimal.Decimal
	overdue decimal.Decimal
	over90  decimal.Decimal
}

// receivablesSheetRows lays the analysis out row-major: title, the
// per-company summary block, then the top overdue clients.
func receivablesSheetRows(records []model.ReceivableRecord, asOf time.Time) [][]interface{} {
	rows := [][]interface{}{
		{fmt.Sprintf("매출채권 분석 결과 (기준일 %s)", asOf.Format("2006-01-02"))},
		{},
		{"회사", "거래처수", "총채권", "기간초과", "90일초과"},
	}

	byCompany := make(map[string]*companyTotals)
	var companies []string
	var grand companyTotals
	for _, rec := range records {
		ct, ok := byCompany[rec.Company]
		if !ok {
			ct = &companyTotals{}
			byCompany[rec.Company] = ct
			companies = append(companies, rec.Company)
		}
		ct.clients++
		ct.total = ct.total.Add(rec.Total)
		ct.overdue = ct.overdue.Add(rec.Overdue)
		ct.over90 = ct.over90.Add(rec.Over90)
		grand.clients++
		grand.total = grand.total.Add(rec.Total)
		grand.overdue = grand.overdue.Add(rec.Overdue)
		grand.over90 = grand.over90.Add(rec.Over90)
	}
	sort.Strings(companies)
	for _, company := range companies {
		ct := byCompany[company]
		rows = append(rows, []interface{}{
			company, ct.clients,
			ct.total.InexactFloat64(), ct.overdue.InexactFloat64(), ct.over90.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{
		"합계", grand.clients,
		grand.total.InexactFloat64(), grand.overdue.InexactFloat64(), grand.over90.InexactFloat64(),
	})

	overdue := make([]model.ReceivableRecord, 0, len(records))
	for _, rec := range records {
		if rec.Overdue.IsPositive() {
			overdue = append(overdue, rec)
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		if !overdue[i].Overdue.Equal(overdue[j].Overdue) {
			return overdue[i].Overdue.GreaterThan(overdue[j].Overdue)
		}
		return overdue[i].Total.GreaterThan(overdue[j].Total)
	})
	if len(overdue) > top20Limit {
		overdue = overdue[:top20Limit]
	}

	rows = append(rows, []interface{}{}, []interface{}{"기간초과 채권 상위 거래처"},
		[]interface{}{"거래처명", "회사", "총채권", "기간초과", "90일초과"})
	for _, rec := range overdue {
		rows = append(rows, []interface{}{
			rec.ClientName, rec.Company,
			rec.Total.InexactFloat64(), rec.Overdue.InexactFloat64(), rec.Over90.InexactFloat64(),
		})
	}
	return rows
}
