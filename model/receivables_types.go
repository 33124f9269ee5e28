package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivableRecord is one client's outstanding balance line from an
// accounts-receivable export, keyed to the Friday it was downloaded
// for.
type ReceivableRecord struct {
	Company    string          `json:"company"`
	AsOf       time.Time       `json:"asOf"`
	ClientCode string          `json:"clientCode"`
	ClientName string          `json:"clientName"`
	Total      decimal.Decimal `json:"total"`
	Overdue    decimal.Decimal `json:"overdue"` // past payment terms
	Over90     decimal.Decimal `json:"over90"`  // more than 90 days out
}
