package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"srg/config"
	"srg/database"
	"srg/model"
)

func TestRunFromSnapshot(t *testing.T) {
	conn, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, database.InitDatabase(conn))

	require.NoError(t, database.ReplaceTransactions(conn, []model.TransactionRecord{
		{Company: "DNI", Date: time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC),
			ClientCode: "1", ClientName: "acme", Product: "gear",
			Category: "drive-unit", Amount: decimal.NewFromInt(100)},
		{Company: "FLK", Date: time.Date(2025, time.August, 11, 0, 0, 0, 0, time.UTC),
			ClientCode: "2", ClientName: "beta", Product: "rope",
			Category: "trade", Amount: decimal.NewFromInt(50)},
	}))

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Template = writeTemplate(t, dir)
	cfg.Paths.ReportOutput = filepath.Join(dir, "out")
	cfg.Paths.Receivables = filepath.Join(dir, "receivables")

	path, err := Run(conn, &cfg)
	require.NoError(t, err)
	assert.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Monthly table at A3: year, month, then category columns.
	got, _ := f.GetCellValue("sales raw", "A3")
	assert.Equal(t, "2025", got)
	got, _ = f.GetCellValue("sales raw", "C3")
	assert.Equal(t, "100", got)

	// Weekly table at H3: both dates fall in the same business week.
	got, _ = f.GetCellValue("sales raw", "H3")
	assert.Equal(t, "2025-08-08 - 2025-08-14", got)

	// Front-page headers from the newest transaction date.
	got, _ = f.GetCellValue("page1", "B1")
	assert.Equal(t, "8월", got)
	got, _ = f.GetCellValue("page1", "D1")
	assert.Equal(t, "2025-08-08 - 2025-08-14", got)

	// No collected receivables, no extra sheet.
	assert.NotContains(t, f.GetSheetList(), ReceivablesSheet)
}

func TestRunIntegratesReceivables(t *testing.T) {
	conn, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, database.InitDatabase(conn))

	require.NoError(t, database.ReplaceTransactions(conn, []model.TransactionRecord{
		{Company: "DNI", Date: time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC),
			ClientCode: "1", ClientName: "acme", Product: "gear",
			Category: "drive-unit", Amount: decimal.NewFromInt(100)},
	}))

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Template = writeTemplate(t, dir)
	cfg.Paths.ReportOutput = filepath.Join(dir, "out")
	cfg.Paths.Receivables = filepath.Join(dir, "receivables")

	writeReceivablesWorkbook(t, filepath.Join(cfg.Paths.Receivables, "DND_receivables_20250808.xlsx"), [][]interface{}{
		{1, "acme", 1000, 200, 0},
	})

	path, err := Run(conn, &cfg)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), ReceivablesSheet)
	got, _ := f.GetCellValue(ReceivablesSheet, "A4")
	assert.Equal(t, "DND", got)
}

func TestRunWithoutSnapshotFails(t *testing.T) {
	conn, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, database.InitDatabase(conn))

	cfg := config.Default()
	cfg.Paths.Template = writeTemplate(t, t.TempDir())

	_, err = Run(conn, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no processed data")
}
