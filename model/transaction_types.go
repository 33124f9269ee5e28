package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one cleaned sales row from a vendor workbook.
// Records are immutable after parsing; aggregation always recomputes
// from the full snapshot, never incrementally.
type TransactionRecord struct {
	ID         int64           `db:"id" json:"id"`
	Company    string          `db:"company" json:"company"`
	Date       time.Time       `db:"-" json:"date"`
	DateText   string          `db:"transaction_date" json:"-"` // YYYY-MM-DD as stored in sqlite
	ClientCode string          `db:"client_code" json:"clientCode"`
	ClientName string          `db:"client_name" json:"clientName"`
	Product    string          `db:"product" json:"product"`
	Category   string          `db:"category" json:"category"`
	Amount     decimal.Decimal `db:"-" json:"amount"`
	AmountText string          `db:"amount" json:"-"`
	SourceFile string          `db:"source_file" json:"sourceFile"`
}

// Account holds one company's ERP portal login. Runtime accounts are
// kept in memory only and handed straight to the automation entry point.
type Account struct {
	Company  string `json:"company"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}
