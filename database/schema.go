package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS transaction_records (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    company          TEXT NOT NULL,
    transaction_date TEXT NOT NULL,
    client_code      TEXT NOT NULL DEFAULT '',
    client_name      TEXT NOT NULL DEFAULT '',
    product          TEXT NOT NULL DEFAULT '',
    category         TEXT NOT NULL DEFAULT '',
    amount           TEXT NOT NULL,
    source_file      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transaction_records_date
    ON transaction_records (transaction_date);
CREATE INDEX IF NOT EXISTS idx_transaction_records_company
    ON transaction_records (company);
`

// InitDatabase creates the transaction snapshot table.
func InitDatabase(conn *sqlx.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
