package process

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"srg/model"
)

// ExportPivotCSV writes a pivot table as CP949-encoded CSV so older
// spreadsheet installs in the source locale open it without mojibake.
func ExportPivotCSV(w io.Writer, table model.PivotTable) error {
	enc := transform.NewWriter(w, korean.EUCKR.NewEncoder())
	cw := csv.NewWriter(enc)

	header := append(append([]string{}, table.KeyHeaders...), table.Categories...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		rec := append([]string{}, row.Keys...)
		for _, a := range row.Amounts {
			rec = append(rec, a.String())
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPivotCSVFile writes the table to path, creating parent
// directories as needed.
func ExportPivotCSVFile(path string, table model.PivotTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ExportPivotCSV(f, table); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Sync()
}
