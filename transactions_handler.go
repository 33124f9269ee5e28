package main

import (
	"net/http"
	"time"

	"srg/database"
	"srg/model"
)

// ListTransactionsHandler returns the processed snapshot, optionally
// windowed with ?since=YYYY-MM-DD.
func (a *App) ListTransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			records []model.TransactionRecord
			err     error
		)
		if since := r.URL.Query().Get("since"); since != "" {
			d, perr := time.Parse("2006-01-02", since)
			if perr != nil {
				writeJSONError(w, "invalid since date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			records, err = database.GetTransactionsSince(a.db, d)
		} else {
			records, err = database.GetAllTransactions(a.db)
		}
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.TransactionRecord{}
		}
		writeJSON(w, records)
	}
}
