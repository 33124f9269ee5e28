package database

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"srg/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitDatabase(conn))
	return conn
}

func TestReplaceAndQueryTransactions(t *testing.T) {
	conn := openTestDB(t)

	records := []model.TransactionRecord{
		{
			Company:    "DND",
			Date:       time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC),
			ClientCode: "1021",
			ClientName: "acme",
			Product:    "gear",
			Category:   "drive-unit",
			Amount:     decimal.RequireFromString("1500000.50"),
			SourceFile: "DND_sales.xlsx",
		},
		{
			Company:  "DNI",
			Date:     time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
			Category: "trade",
			Amount:   decimal.NewFromInt(200),
		},
	}
	require.NoError(t, ReplaceTransactions(conn, records))

	all, err := GetAllTransactions(conn)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Ordered by date: the July row comes first.
	assert.Equal(t, "DNI", all[0].Company)
	assert.Equal(t, "acme", all[1].ClientName)
	assert.True(t, all[1].Amount.Equal(decimal.RequireFromString("1500000.50")))
	assert.Equal(t, time.August, all[1].Date.Month())
}

func TestReplaceTransactionsReplacesSnapshot(t *testing.T) {
	conn := openTestDB(t)

	first := []model.TransactionRecord{
		{Company: "DND", Date: time.Date(2025, time.August, 8, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1)},
	}
	require.NoError(t, ReplaceTransactions(conn, first))

	second := []model.TransactionRecord{
		{Company: "DNI", Date: time.Date(2025, time.August, 9, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(2)},
		{Company: "DNI", Date: time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(3)},
	}
	require.NoError(t, ReplaceTransactions(conn, second))

	n, err := CountTransactions(conn)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetTransactionsSince(t *testing.T) {
	conn := openTestDB(t)

	records := []model.TransactionRecord{
		{Company: "DND", Date: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1)},
		{Company: "DND", Date: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(2)},
		{Company: "DND", Date: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(3)},
	}
	require.NoError(t, ReplaceTransactions(conn, records))

	since, err := GetTransactionsSince(conn, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, time.July, since[0].Date.Month())
}
