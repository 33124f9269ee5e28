package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"srg/model"
)

const dateLayout = "2006-01-02"

// ReplaceTransactions swaps the whole snapshot for the given records in
// one transaction. The snapshot is always rebuilt from the full source
// set; there is no incremental path.
func ReplaceTransactions(conn *sqlx.DB, records []model.TransactionRecord) error {
	tx, err := conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transaction_records`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareNamed(`
        INSERT INTO transaction_records
            (company, transaction_date, client_code, client_name, product, category, amount, source_file)
        VALUES
            (:company, :transaction_date, :client_code, :client_name, :product, :category, :amount, :source_file)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		rec.DateText = rec.Date.Format(dateLayout)
		rec.AmountText = rec.Amount.String()
		if _, err := stmt.Exec(rec); err != nil {
			return fmt.Errorf("insert record (%s %s): %w", rec.Company, rec.DateText, err)
		}
	}
	return tx.Commit()
}

// GetAllTransactions returns the full snapshot ordered by date.
func GetAllTransactions(conn *sqlx.DB) ([]model.TransactionRecord, error) {
	return queryTransactions(conn, `SELECT * FROM transaction_records ORDER BY transaction_date, id`)
}

// GetTransactionsSince returns the snapshot rows on or after the date.
func GetTransactionsSince(conn *sqlx.DB, since time.Time) ([]model.TransactionRecord, error) {
	return queryTransactions(conn,
		`SELECT * FROM transaction_records WHERE transaction_date >= ? ORDER BY transaction_date, id`,
		since.Format(dateLayout))
}

// CountTransactions returns the snapshot size.
func CountTransactions(conn *sqlx.DB) (int, error) {
	var n int
	if err := conn.Get(&n, `SELECT COUNT(*) FROM transaction_records`); err != nil {
		return 0, err
	}
	return n, nil
}

func queryTransactions(conn *sqlx.DB, query string, args ...interface{}) ([]model.TransactionRecord, error) {
	var rows []model.TransactionRecord
	if err := conn.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	for i := range rows {
		d, err := time.Parse(dateLayout, rows[i].DateText)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q in row %d: %w", rows[i].DateText, rows[i].ID, err)
		}
		rows[i].Date = d
		amount, err := decimal.NewFromString(rows[i].AmountText)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q in row %d: %w", rows[i].AmountText, rows[i].ID, err)
		}
		rows[i].Amount = amount
	}
	return rows, nil
}
