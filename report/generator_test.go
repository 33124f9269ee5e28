package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"srg/model"
)

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("sales raw")
	require.NoError(t, err)
	_, err = f.NewSheet("page1")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("sales raw", "A1", "monthly"))
	require.NoError(t, f.SetCellValue("sales raw", "H1", "weekly"))
	require.NoError(t, f.MergeCell("page1", "B1", "C1"))

	path := filepath.Join(dir, "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func pivot(keys []string, categories []string, amounts ...int64) model.PivotTable {
	row := model.PivotRow{Keys: keys}
	for _, a := range amounts {
		row.Amounts = append(row.Amounts, decimal.NewFromInt(a))
	}
	total := model.PivotRow{Keys: make([]string, len(keys)), Amounts: row.Amounts}
	total.Keys[0] = "total"
	return model.PivotTable{
		KeyHeaders: keys,
		Categories: categories,
		Rows:       []model.PivotRow{row, total},
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	template := writeTemplate(t, dir)

	monthly := pivot([]string{"2025", "8"}, []string{"drive-unit", "trade"}, 100, 50)
	weekly := pivot([]string{"2025-08-08 - 2025-08-14"}, []string{"drive-unit", "trade"}, 100, 50)

	outDir := filepath.Join(dir, "report")
	resultPath, err := Generate(template, outDir, DefaultLayout(), monthly, weekly, Headers{BaseMonth: "2025-08"})
	require.NoError(t, err)
	assert.FileExists(t, resultPath)

	f, err := excelize.OpenFile(resultPath)
	require.NoError(t, err)
	defer f.Close()

	got, _ := f.GetCellValue("sales raw", "A3")
	assert.Equal(t, "2025", got)
	got, _ = f.GetCellValue("sales raw", "B3")
	assert.Equal(t, "8", got)
	got, _ = f.GetCellValue("sales raw", "C3")
	assert.Equal(t, "100", got)

	got, _ = f.GetCellValue("sales raw", "H3")
	assert.Equal(t, "2025-08-08 - 2025-08-14", got)
	got, _ = f.GetCellValue("sales raw", "I3")
	assert.Equal(t, "100", got)

	// Total rows stay out of the template.
	got, _ = f.GetCellValue("sales raw", "A4")
	assert.Equal(t, "", got)

	// Header cell lands on the merged anchor.
	got, _ = f.GetCellValue("page1", "B1")
	assert.Equal(t, "2025-08", got)

	// Template itself untouched.
	orig, err := excelize.OpenFile(template)
	require.NoError(t, err)
	defer orig.Close()
	got, _ = orig.GetCellValue("sales raw", "A3")
	assert.Equal(t, "", got)
}

func TestGenerateMissingTemplateIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(filepath.Join(dir, "absent.xlsx"), dir, DefaultLayout(), model.PivotTable{}, model.PivotTable{}, Headers{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
