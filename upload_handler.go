package main

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"srg/parsers"
)

// UploadSalesHandler accepts a vendor workbook and drops it into the
// raw-data folder so the next processing run picks it up. The workbook
// is parsed first; a broken or unrecognized file is rejected without
// touching the folder.
func (a *App) UploadSalesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "a workbook file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		cfg := a.configSnapshot()
		filename := filepath.Base(header.Filename)
		company, ok := cfg.CompanyForFile(filename)
		if !ok {
			writeJSONError(w, "filename matches no configured company: "+filename, http.StatusBadRequest)
			return
		}

		raw, err := io.ReadAll(file)
		if err != nil {
			log.Printf("Error reading upload: %v", err)
			writeJSONError(w, "failed to read upload", http.StatusInternalServerError)
			return
		}

		// Structure check only; the processing stage resolves categories.
		records, _, err := parsers.ParseSalesReader(bytes.NewReader(raw), filename, parsers.SalesParseOptions{
			Company:         company.Name,
			DefaultCategory: company.DefaultCategory,
		})
		if err != nil {
			writeJSONError(w, "workbook rejected: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := os.MkdirAll(cfg.Paths.SalesRawData, 0755); err != nil {
			log.Printf("Error creating raw-data folder: %v", err)
			writeJSONError(w, "failed to save workbook", http.StatusInternalServerError)
			return
		}
		dest := filepath.Join(cfg.Paths.SalesRawData, filename)
		if err := os.WriteFile(dest, raw, 0644); err != nil {
			log.Printf("Error saving workbook: %v", err)
			writeJSONError(w, "failed to save workbook", http.StatusInternalServerError)
			return
		}

		log.Printf("workbook uploaded: %s (%d record(s))", dest, len(records))
		writeJSON(w, map[string]interface{}{
			"message": "workbook saved",
			"company": company.Name,
			"records": len(records),
		})
	}
}
